// Package fill writes fill patterns into a memory-mapped file, one goroutine per region.
//
// The Orchestrator maps the backing file once, derives a writable view per
// region, drops its own reference to the mapping, and then runs every region
// writer concurrently. Views are disjoint, so writers never share bytes and no
// locking is needed. The mapping is unmapped when the last view is closed.
//
//	o, _ := fill.New("/tmp/fill.bin", func(o *fill.Options) {
//	    o.BufferSize = 4096
//	})
//	report, err := o.Fill(ctx, l, layout.Forward)
//	if err != nil {
//	    // setup failed (open, size, map)
//	}
//	if !report.OK() {
//	    // some regions failed; report.Err() lists them
//	}
//
// A failing region never stops its siblings: errors are captured per region
// in the Report instead of cancelling the group.
package fill
