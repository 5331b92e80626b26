// Package mentions — извлечение @упоминаний из текста комментария.
//
// Упоминание — это последовательность @word, где word состоит из букв,
// цифр и подчёркивания. Сопоставление с реальными пользователями здесь
// не выполняется: пакет возвращает только «сырые» хендлы, резолв
// делает сервисный слой через справочник пользователей.
package mentions

import "regexp"

// handleRe — формат хендла; регистр значим.
var handleRe = regexp.MustCompile(`@(\w+)`)

// Extract возвращает хендлы в порядке появления в тексте, с дублями.
// Пустой текст -> nil.
func Extract(text string) []string {
	matches := handleRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		handles = append(handles, m[1])
	}

	return handles
}

// ExtractUnique возвращает хендлы без дублей, сохраняя порядок
// первого вхождения.
func ExtractUnique(text string) []string {
	all := Extract(text)
	if len(all) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(all))
	unique := make([]string, 0, len(all))

	for _, h := range all {
		if _, ok := seen[h]; ok {
			continue
		}

		seen[h] = struct{}{}
		unique = append(unique, h)
	}

	return unique
}
