// Package connectivity provides the reachability signal that gates every
// repository request.
//
// A Probe answers IsConnected synchronously and never fails. Static and Func
// cover fixed and adapter cases; Monitor keeps a background TCP reachability
// check and serves the last observed state.
package connectivity
