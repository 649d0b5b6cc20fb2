package service

import (
	"fmt"
	"strings"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
)

// maxContextChunkRunes bounds each retrieved passage embedded in the user
// prompt; longer passages are cut and marked with an ellipsis.
const maxContextChunkRunes = 800

// SystemPrompt returns the fixed role preamble sent with every generation
// request: the model acts as a GOST 19.201-78 expert drafting requirements
// documents for university information systems. No inputs, no randomness —
// the output is byte-identical across calls.
func SystemPrompt() string {
	return "Ты — эксперт по стандартизации и проектированию информационных систем.\n" +
		"Твоя задача — формировать разделы технического задания (ТЗ) в соответствии " +
		"с ГОСТ 19.201-78 и практикой разработки автоматизированных систем в вузах.\n\n" +
		"Требования к ответу:\n" +
		"1. Пиши по-русски, академичным, но понятным языком.\n" +
		"2. Соблюдай структуру и терминологию ГОСТ 19.201-78.\n" +
		"3. Учитывай, что объект автоматизации — информационная система в университете.\n" +
		"4. Не выдумывай факты о конкретном университете, если они не указаны во входных данных.\n" +
		"5. Формируй текст так, чтобы его можно было сразу вставить в раздел ТЗ.\n"
}

// UserPrompt builds the per-request prompt body: the project description and
// target section, followed either by a labeled context block of retrieved
// passages (each tagged with its provenance and truncated) or by an
// instruction to rely on the general normative structure.
func UserPrompt(projectName, projectDomain, projectDescription, sectionName string, retrieved []domain.RetrievedChunk, withContext bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Проект: %s\n", projectName)
	fmt.Fprintf(&b, "Предметная область: %s\n\n", projectDomain)
	fmt.Fprintf(&b, "Краткое описание проекта:\n%s\n\n", projectDescription)
	fmt.Fprintf(&b, "Необходимо сформировать раздел технического задания (ТЗ): «%s».\n\n", sectionName)
	b.WriteString("Опиши данный раздел так, как это принято в ГОСТ 19.201-78, с учётом того, " +
		"что система создаётся для вуза. Следи за связностью текста и логикой изложения, " +
		"избегай излишней воды и общих фраз.")

	if withContext && len(retrieved) > 0 {
		b.WriteString("\n\n--- Контекст (фрагменты из ГОСТ и связанных документов) ---\n")
		for i, chunk := range retrieved {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "[Фрагмент %d | источник: %s | документ: %s]\n%s",
				i+1, chunk.SourceType, chunk.Title, truncateRunes(chunk.Text, maxContextChunkRunes))
		}
		b.WriteString("\n\nИспользуя приведённый контекст, сформируй связный и аккуратный текст " +
			"раздела ТЗ. При необходимости переформулируй фрагменты, не копируй их дословно.")
	} else {
		b.WriteString("\n\nКонтекст по ГОСТ и методическим материалам явно не подставляется. " +
			"Ориентируйся на общие требования к структуре ТЗ в соответствии с ГОСТ 19.201-78.")
	}

	return b.String()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
