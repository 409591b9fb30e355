// Package alert raises and clears a traffic alert over a rolling window.
//
// Monitor keeps the timestamps of the requests from the last alert_window
// seconds of log time. A request at time t evicts every request at or before
// t-alert_window, so the window is (t-alert_window, t]. The average rate is
// the request count divided by the window length. An ALERT line is produced
// when the rate reaches alert_rate and a RECOVERY line when it drops below;
// nothing is produced while the state holds.
//
//	2019-02-07 21:13:00 ALERT-----+------> average of  10.0rps over last 120 seconds exceeds threshold of   10.0rps <-------ALERT
//	2019-02-07 21:15:01 RECOVERY--+------> average of   9.9rps over last 120 seconds is below threshold of  10.0rps <----RECOVERY
package alert
