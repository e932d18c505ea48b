// Package reports renders missing-charter data for humans: CSV reports and
// the recovery ZIP that pulls each missing charter's bytes back out of the
// backup it was last seen in.
package reports
