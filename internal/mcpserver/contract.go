package mcpserver

// LawCodesGuide describes the supported legal code families and how LLM
// consumers should phrase tool arguments.
const LawCodesGuide = `# NyayAssist Legal Code Guide

India replaced its three core criminal codes on July 1, 2024:

| Old code | Full name | New code | Full name |
|----------|-----------|----------|-----------|
| IPC  | Indian Penal Code           | BNS  | Bharatiya Nyaya Sanhita |
| CrPC | Code of Criminal Procedure  | BNSS | Bharatiya Nagarik Suraksha Sanhita |
| IEA  | Indian Evidence Act         | BEA  | Bharatiya Sakshya Adhiniyam |

## Rules

1. **law_type** arguments accept the OLD code name: ` + "`IPC`" + `, ` + "`CRPC`" + `, or ` + "`IEA`" + `
   (case-insensitive).
2. **section** arguments are the bare section id, digits plus an optional
   letter suffix: ` + "`302`" + `, ` + "`304A`" + `, ` + "`65B`" + `.
3. A section marked ` + "`OMITTED`" + ` has no successor provision in the new code.
4. ` + "`detect_citations`" + ` finds references in free text, so pass full sentences
   ("punishment under Section 302 of the IPC") rather than bare numbers.
5. Always cite BOTH the old and the new provision when answering users, since
   courts currently use both depending on the offence date.
`
