// Package bridge is the polling core of the MPX bridge.
//
// A single scheduling goroutine owns a Registry of tasks, one per device
// coordinate plus two maintenance tasks (event feed and liveness). Each loop
// iteration the Scheduler:
//
//  1. signals readiness once every poll task has completed a first poll
//  2. runs every due high-priority task
//  3. applies at most one queued control command
//  4. runs the least recently run task if it is due, otherwise idles 1s
//
// Poll tasks keep the last flattened snapshot in a Cache and only the entries
// whose value changed are published. Control commands arrive on MQTT, are
// parsed on the client's goroutine and handed to the scheduler through a
// bounded Inbox.
package bridge
