// Package ui styles the human-facing text the CLI prints.
//
// On a color terminal each Formatter paints its text. With NO_COLOR set, or
// when output is not a terminal, it falls back to plain markers so the role
// of the text stays visible:
//
//	ui.Code.Sprint("groupenc rotate")   // `groupenc rotate`
//	ui.Highlight.Sprint("db_password")  // 'db_password'
//	ui.Muted.Sprint("you")              // (you)
package ui
