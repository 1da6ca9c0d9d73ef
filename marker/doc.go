// Package marker implements named tags that can be attached to log records.
//
// A [Marker] has a name, an optional payload value, and an ordered set of
// references to other markers. References are shared: many markers may
// reference the same child, and callers are free to build cycles. Every
// traversal in this package is therefore cycle-guarded; [Walk] and
// [FindByType] report a cycle as a [*CycleError] instead of recursing
// forever.
//
//	security := marker.New("security")
//	audit := marker.New("audit", security)
//
//	audit.ContainsName("security") // true
//	audit.String()                 // "audit [security]"
//
// Payload values enable typed search:
//
//	type Owner struct{ Team string }
//
//	m := marker.New("request", marker.NewValue("owner", Owner{Team: "infra"}))
//
//	err := marker.FindByType(m, func(_ *marker.Marker, o Owner) {
//	    fmt.Println(o.Team)
//	})
package marker
