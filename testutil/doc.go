// Package testutil provides fixtures and test doubles shared by accessmon tests.
//
// Fixtures build CSV access logs without hand-writing rows:
//
//	input := testutil.CSV(testutil.Burst(testutil.Start, 20, 3)...)
//
// Test doubles stand in for the pipeline's edges:
//   - LineRecorder collects output lines in memory.
//   - FailingWriter rejects every line.
//   - ErrorSource yields a fixed set of records, then a chosen error.
package testutil
