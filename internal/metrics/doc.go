// Package metrics records build observations for blogbuilder.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// collection needs no nil checks at call sites:
//
//	b := site.NewBuilder(cfg) // NoopRecorder
//	b.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// There is no HTTP endpoint. A build is a short-lived process, so when
// metrics.textfile is configured the registry is written once at the end of
// the build with WriteTextfile, for pickup by the node_exporter textfile
// collector.
package metrics
