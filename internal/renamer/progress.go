package renamer

import "time"

// Progress receives human-readable progress events as entries are processed.
type Progress interface {
	// Scanned is called once the directory has been enumerated.
	Scanned(directory string, total int)
	// Attempt is called before every rename try.
	Attempt(name string, attempt, maxAttempts int)
	// Retrying is called after a locked attempt when another attempt follows.
	Retrying(name string, attempt, maxAttempts int, delay time.Duration, err error)
	Renamed(res Result)
	Failed(res Result)
	Planned(res Result)
}

type nopProgress struct{}

func (nopProgress) Scanned(string, int)                             {}
func (nopProgress) Attempt(string, int, int)                        {}
func (nopProgress) Retrying(string, int, int, time.Duration, error) {}
func (nopProgress) Renamed(Result)                                  {}
func (nopProgress) Failed(Result)                                   {}
func (nopProgress) Planned(Result)                                  {}
