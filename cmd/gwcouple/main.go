/*
Copyright © 2026 the GWCouple authors.
This file is part of GWCouple.

GWCouple is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GWCouple is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GWCouple.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command gwcouple is a command-line interface for the one-way
// surface-water to groundwater coupling driver.
package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hydromodel/gwcouple/gwcoupleutil"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
}

func main() {
	if err := gwcoupleutil.Root.Execute(); err != nil {
		logger.WithError(err).Error("run failed")
		os.Exit(1)
	}
}
