package mcpserver

// ContentFormatURI is the resource URI of ContentFormat.
const ContentFormatURI = "tonote://content-format"

// ContentFormat describes the JSON shape of notes and their content items.
// read_note returns notes in this shape.
const ContentFormat = `# tonote Content Format

Notes are ordered sequences of content items with a title. Every note belongs
to exactly one note list.

## Content items

A content item is a JSON object with exactly one of these keys:

` + "```" + `json
{ "text": "milk, eggs" }
{ "imageData": "<base64 bytes>" }
{ "voiceRecording": { "data": "<base64 WAV bytes>", "duration": 2.5 } }
` + "```" + `

- Decoders try ` + "`text`" + `, then ` + "`imageData`" + `, then ` + "`voiceRecording`" + `.
  The first key present with a usable value wins.
- A record with none of them is corrupted and fails the whole note.
- ` + "`duration`" + ` is in seconds and never negative.

## Note

` + "```" + `json
{
  "id": "9b2f7c1e-8d2a-4c55-9f0e-1f4f8a6b3c21",
  "title": "Groceries",
  "items": [{ "text": "milk" }],
  "timestamp": "2025-01-20T09:30:00Z",
  "lastModified": "2025-01-20T10:02:11Z"
}
` + "```" + `

- ` + "`timestamp`" + ` is the creation instant (RFC 3339) and is required.
- ` + "`lastModified`" + ` defaults to ` + "`timestamp`" + ` and is never earlier than it.
- A missing ` + "`id`" + ` is assigned on decode.

## Note list and export

` + "```" + `json
{ "id": "<uuid>", "name": "Journal", "notes": [ ... ] }
{ "noteLists": [ ... ] }
` + "```" + `

New notes are inserted at the front of their list.

## Previews

A note's preview is its title when not blank, else the first text item with
visible content (truncated to 100 characters), else an item count summary
such as "1 text, 2 images". A note is empty when its title is blank and it
holds only blank text items.
`
