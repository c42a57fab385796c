package future

import "github.com/sirupsen/logrus"

// log is the package-wide logger. It defaults to logrus' standard
// logger so host applications configure output, level and formatting
// the same way they do for the rest of their logrus usage.
var log = logrus.StandardLogger()
