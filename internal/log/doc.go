// Package log configures structured logging for hncrawl on top of log/slog.
//
// Two sinks are used: the log.txt file in the output root, which receives
// every INFO and ERROR record of the crawl (cycle numbers, submissions,
// saved URLs and paths, caught fetch failures), and the console, which
// only shows warnings and errors unless verbose mode is on.
//
// Values that may carry credentials, such as the configured cookie or an
// Authorization header, are redacted by SecureHandler before reaching
// either sink.
//
// # Usage
//
//	logger, closeFn, err := log.Setup(log.Options{
//	    LogFile: "data/log.txt",
//	    Console: os.Stderr,
//	})
//	defer closeFn()
//	logger.Info("NEWS ID", "id", 42)
package log
