package inspector

import _ "embed"

// In-page scripts. Each is a single function expression evaluated with
// its arguments through the page's Eval call and returns a JSON string
// (or a short status string for the overlay scripts).

//go:embed scripts/tree.js
var treeJS string

//go:embed scripts/markup.js
var markupJS string

//go:embed scripts/stylesheets.js
var stylesheetsJS string

//go:embed scripts/scripts.js
var scriptsJS string

//go:embed scripts/computed.js
var computedJS string

//go:embed scripts/matched.js
var matchedJS string

//go:embed scripts/picker.js
var pickerJS string

//go:embed scripts/picker_disable.js
var pickerDisableJS string

//go:embed scripts/highlight.js
var highlightJS string
