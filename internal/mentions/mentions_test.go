package mentions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExtract_Basic — одиночные и множественные упоминания.
func TestExtract_Basic(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"ivan"}, Extract("привет, @ivan!"))
	require.Equal(t, []string{"ivan", "petya_99"}, Extract("@ivan и @petya_99, гляньте"))
}

// TestExtract_NoMentions — текст без упоминаний -> nil.
func TestExtract_NoMentions(t *testing.T) {
	t.Parallel()

	require.Nil(t, Extract("просто текст без хендлов"))
	require.Nil(t, Extract(""))
	// Одиночная @ без слова — не упоминание.
	require.Nil(t, Extract("встречаемся @ входа"))
}

// TestExtract_PreservesDuplicatesAndOrder — Extract не дедуплицирует.
func TestExtract_PreservesDuplicatesAndOrder(t *testing.T) {
	t.Parallel()

	got := Extract("@a @b @a @c @b")
	require.Equal(t, []string{"a", "b", "a", "c", "b"}, got)
}

// TestExtract_CaseSensitive — регистр хендла сохраняется как есть.
func TestExtract_CaseSensitive(t *testing.T) {
	t.Parallel()

	got := Extract("@Ivan и @ivan — разные хендлы")
	require.Equal(t, []string{"Ivan", "ivan"}, got)
}

// TestExtract_Punctuation — хендл обрывается на первом не-\w символе.
func TestExtract_Punctuation(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"ivan"}, Extract("спасибо, @ivan."))
	require.Equal(t, []string{"ivan"}, Extract("(@ivan)"))
	// email не отличим от упоминания на уровне regex — это осознанно,
	// несуществующие хендлы отсеет резолв по справочнику.
	require.Equal(t, []string{"example"}, Extract("пишите на ivan@example.com"))
}

// TestExtractUnique — дедупликация с сохранением порядка первого вхождения.
func TestExtractUnique(t *testing.T) {
	t.Parallel()

	got := ExtractUnique("@b @a @b @c @a")
	require.Equal(t, []string{"b", "a", "c"}, got)

	require.Nil(t, ExtractUnique("без упоминаний"))
}
