// Package prettyprint renders arbitrary values as human-readable text for log
// messages.
//
// A [Printer] tries its [Module]s in order and lets the first one that
// accepts a value render it. Values no module accepts are rendered by the
// default renderer, which bounds how many elements of a slice, array or map
// are printed. Rendering never panics: a failing module falls back to the
// default path.
//
//	p := prettyprint.New(
//	    prettyprint.WithModules(prettyprint.PathModule{}),
//	    prettyprint.WithMaxElements(5),
//	)
//
//	var buf bytes.Buffer
//	p.Append(&buf, []int{1, 2, 3, 4, 5, 6, 7}) // "[1, 2, 3, 4, 5, ... (2 more)]"
package prettyprint
