// Package metrics records build observability for sitewrap.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless a caller asks for them:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	b := build.NewBuilder(config.NewStore(root)).WithRecorder(rec)
//	// ... run builds ...
//	err := rec.WriteTextfile("sitewrap.prom")
//
// sitewrap is a one-shot batch tool, so metrics are not served over HTTP.
// They are written once at exit in the Prometheus text exposition format,
// ready for the node_exporter textfile collector.
package metrics
