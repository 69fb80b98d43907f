// Package crawler runs the periodic front-page crawl.
//
// # Components
//
//   - SeenSet: submission ids already handled by this process
//   - Processor: saves one submission's target and every link in its comments
//   - Cycle: fetches the index once and fans out a Processor per new submission
//   - Scheduler: runs a Cycle, waits a fixed delay, and repeats until interrupted
//
// # Concurrency
//
// Fan-out is unbounded and joined per scope. A Cycle returns only after all
// of its Processors finished, and a Processor returns only after every save
// it started finished, so no work outlives the call that spawned it. A
// failure in one save never cancels its siblings.
//
// The SeenSet is owned by the Cycle and is written only from RunOnce, in
// document order, before the corresponding Processor is started.
//
// # Usage
//
//	seen := crawler.NewSeenSet()
//	proc := crawler.NewProcessor(f, saver, baseURL)
//	cycle := crawler.NewCycle(f, proc, seen, crawler.WithBaseURL(baseURL))
//	err := crawler.NewScheduler(cycle, crawler.WithDelay(5*time.Second)).Run(ctx)
package crawler
