package content

// Rope is the editor-supplied text of one open file. The worker treats it
// as an opaque string: editors are free to send it as a true rope, a piece
// table, or a flat string — nothing downstream of the content store cares,
// since parsing always consumes it as one contiguous read (spec.md §3's
// "text-rope" is a transport-level optimization, not a worker concern).
type Rope = string
