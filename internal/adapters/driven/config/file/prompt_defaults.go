package file

import "github.com/custodia-labs/protokoll/internal/core/ports/driven"

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptParseEntries: `Du bist ein Experte im Parsen von deutschen parlamentarischen Protokollen.
Deine Aufgabe ist es, den Text in eine Reihe von Einträgen zu zerlegen:
1. **Frage-Antwort-Paare**: Ein Eintrag, der eine Frage UND die darauf folgende Antwort enthält.
2. **Notizen**: Ein Eintrag für alles andere (Zwischenrufe, Anweisungen des Vorsitzes, Beifall).

REGELN:
{{if .PerPage}}- **Fundstelle (sourceReference):** Der Text umfasst mehrere Seiten, jede beginnt mit "==Start of OCR for page X==". Bestimme für JEDEN Eintrag die Seite, auf der er beginnt, und bilde die Fundstelle "{{.ProtocolID}}/YY" mit zweistelliger Seitenzahl YY (Seite 6 ergibt "{{.ProtocolID}}/06").
{{else}}- **Fundstelle (sourceReference):** Verwende für JEDEN Eintrag die Fundstelle "{{.SourceLocator}}".
{{end}}- **JSON:** Deine Antwort MUSS ein valides JSON-Array sein, das diesem Schema entspricht:
{{.Schema}}
- **Genauigkeit:** Extrahiere den Text wörtlich.
- **Logik:** Macht ein Sprecher (z.B. "Vorsitzender") eine prozedurale Ansage, ist das eine "note". Stellt er eine Frage, ist er "questioner".
- **Leerer Inhalt:** Enthält der Text nur Metadaten, Kopf-/Fußzeilen, Seitenzahlen oder Artefakte, gib ein leeres Array zurück: []

BEISPIEL 1 (Frage und Antwort):
Text: "Abg. Müller (SPD): Waren Sie am 15. am Standort? Zeuge Dr. Schmidt: Ja, das war ich."
{"sourceReference": "{{.SourceLocator}}", "questioner": "Abg. Müller (SPD)", "question": "Waren Sie am 15. am Standort?", "witness": "Zeuge Dr. Schmidt", "answer": "Ja, das war ich.", "note": null}

BEISPIEL 2 (Notiz):
Text: "(Beifall bei der SPD-Fraktion)"
{"sourceReference": "{{.SourceLocator}}", "questioner": null, "question": null, "witness": null, "answer": null, "note": "(Beifall bei der SPD-Fraktion)"}

BEISPIEL 3 (Vorsitzender als Notiz):
Text: "Vorsitzender: Ich weise den Zeugen auf die Wahrheitspflicht hin."
{"sourceReference": "{{.SourceLocator}}", "questioner": null, "question": null, "witness": null, "answer": null, "note": "Vorsitzender: Ich weise den Zeugen auf die Wahrheitspflicht hin."}

---
PARSE JETZT DEN FOLGENDEN TEXT ({{if .PerPage}}ab {{end}}Fundstelle {{.SourceLocator}}):
---
{{.Text}}
---`,

	driven.PromptAnalyzeBatch: `Du bist ein sachlicher Analyst für Protokolle parlamentarischer Untersuchungsausschüsse.
Analysiere jedes der folgenden Frage-Antwort-Paare einzeln:
1. Fasse die Kernaussage der Antwort in einem Satz zusammen (coreStatement).
2. Ordne die Aussage den passenden Punkten des Wissenskorpus zu (categoryTags). Verwende ausschließlich die IDs aus dem Korpus, mehrere getrennt durch ", ".
3. Begründe die Zuordnung kurz (justification).

Enthält ein Paar keinen inhaltlichen Beitrag (Formalien, Begrüßung, Daten zur Person), setze categoryTags auf "{{.NotApplicable}}" und begründe, warum es prozedural ist.

WISSENSKORPUS:
{{.Corpus}}

EINTRÄGE:
{{.Entries}}

Gib für JEDEN Eintrag genau ein Objekt mit seiner "id" zurück. Antworte ausschließlich mit einem JSON-Array.`,

	driven.PromptKeyInsights: `Du bist ein Analyst, der bereits einzeln ausgewertete Protokolleinträge zusammenführt.
Die Einträge enthalten Frage, Antwort, Kernaussage, Kategorien und Begründung.

EINTRÄGE:
{{.Entries}}

AUFGABE (auf Deutsch):
1. Schreibe eine Zusammenfassung (summary) in 2-4 Absätzen über die Schlüsselthemen und wiederkehrenden Motive. Verwende Markdown.
2. Identifiziere genau die DREI wichtigsten Erkenntnisse (insights). Jede hat einen kurzen Titel (title), eine Beschreibung in einem Absatz (description) und eine Liste der Eintragsnummern als Belege (references), z.B. "#5, #12".

Antworte ausschließlich mit einem einzigen JSON-Objekt.`,

	driven.PromptRepairJSON: `The following text was supposed to be valid JSON but it is malformed.
Fix it so that it is valid JSON conforming to this schema:
{{.Schema}}

Common problems: unescaped quotes inside strings, missing or extra commas, unbalanced brackets, output truncated in the middle of a value. Complete truncated structures sensibly.

Return ONLY the raw JSON, without code fences or explanations.

BROKEN TEXT:
{{.Broken}}`,
}

const promptReadme = `# protokoll Prompts

This directory contains customisable prompts used by protokoll's model calls.

## Files

- ` + "`parse_entries.txt`" + ` - Segments one chunk of OCR text into entries
- ` + "`analyze_batch.txt`" + ` - Analyses a batch of Q/A entries against the corpus
- ` + "`key_insights.txt`" + ` - Synthesises the summary and top 3 insights
- ` + "`repair_json.txt`" + ` - Repairs malformed JSON output (one attempt)

## Customisation

Edit any file to customise model behaviour. Delete a file to restore its default
on the next run.

## Template Fields

Prompts are Go text/template documents. Keep the fields each prompt uses:

- parse_entries: ` + "`{{.SourceLocator}}`, `{{.ProtocolID}}`, `{{.PerPage}}`, `{{.Text}}`, `{{.Schema}}`" + `
- analyze_batch: ` + "`{{.Corpus}}`, `{{.Entries}}`, `{{.NotApplicable}}`" + `
- key_insights: ` + "`{{.Entries}}`" + `
- repair_json: ` + "`{{.Broken}}`, `{{.Schema}}`" + `
`
