// Package local provides a hostsession.Client for the local machine.
//
// Commands run through the system shell and files are copied on the local
// filesystem. With WithRoot, "remote" paths are placed under a directory so a
// Session can be rehearsed without touching the real target paths.
//
// Usage:
//
//	sess, _ := hostsession.New("localhost", hostsession.Auth{}, local.Factory())
//	res, _ := sess.Execute(ctx, "echo hello")
//	_ = res
package local
