package core

// Agent instructions. These mirror the tutoring behaviour the service
// shipped with: lesson content is reproduced verbatim apart from
// whitespace fixes, raga answers stay factual, and pattern output is
// bare notation.

const lessonFormatInstruction = `You are a lesson content provider.

Below is lesson content extracted from a PDF. Return ALL of it - exercises,
notations, everything. Do NOT summarize, paraphrase, rewrite, or remove any
content. Preserve every character exactly, EXCEPT you may apply pure
formatting fixes:
- Replace every "||" with a newline character
- Insert line breaks where needed to match section boundaries

You are allowed to modify ONLY whitespace and line breaks.
No markdown, no bold, no bullets, no headings.

Lesson content:
`

const ragaInfoInstruction = `Based on the user's prompt, generate Carnatic raga info.
Follow these rules:
- Provide arohanam and avarohanam for the raga if available.
- Include information about janya ragas derived from the main raga.
- If the user asks about a specific raga, provide detailed information about
  that raga including its arohanam, avarohanam, janya ragas, popular
  compositions, and any unique features.
- If the user asks for a list of ragas, provide a categorized list
  (e.g., melakarta ragas, janya ragas).
- If the user asks for comparisons between ragas, highlight their differences
  in terms of scale, mood, and usage.
- Always ensure the information is accurate and relevant to Carnatic music.

User prompt: `

const ragaNotesInstruction = `Return the swara notes of the Carnatic raga named below.
Respond ONLY with valid JSON in the following format:
{"arohanam": ["s", "r", "g", ...], "avarohanam": ["S", "n", "d", ...]}
Do not include compositions, history, descriptions, or any other text.

Raga: `
