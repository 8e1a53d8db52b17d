/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatter for protoinfer. Compact single-line output with optional
colors, a short run identifier prefix and sorted structured fields.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// runIDWidth is how many characters of a run id are shown in the prefix
const runIDWidth = 8

// CustomFormatter renders entries as "time LEVEL [run] message key=value ..."
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var output strings.Builder

	if f.Timestamp {
		output.WriteString(f.paint(36, entry.Time.Format("2006-01-02 15:04:05.000")))
		output.WriteString(" ")
	}

	output.WriteString(f.paint(f.getLevelColor(entry.Level), strings.ToUpper(entry.Level.String())))
	output.WriteString(" ")

	if runID, ok := entry.Data["run_id"].(string); ok && runID != "" {
		if len(runID) > runIDWidth {
			runID = runID[:runIDWidth]
		}
		output.WriteString(f.paint(35, "["+runID+"]"))
		output.WriteString(" ")
	}

	if f.Caller && entry.HasCaller() {
		output.WriteString(f.paint(33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line)))
		output.WriteString(" ")
	}

	output.WriteString(entry.Message)

	if fields := f.formatFields(entry.Data); fields != "" {
		output.WriteString(" ")
		output.WriteString(fields)
	}

	output.WriteString("\n")
	return []byte(output.String()), nil
}

func (f *CustomFormatter) paint(color int, s string) string {
	if !f.Colors {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", color, s)
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	default:
		return 35 // Magenta
	}
}

// formatFields renders fields sorted by key, leaving out the run id shown in the prefix
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "run_id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		value := formatValue(fields[k])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", k, value))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", k, value))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.Round(time.Microsecond).String()
	case time.Time:
		return v.Format("15:04:05.000")
	case error:
		return fmt.Sprintf("%q", v.Error())
	case string:
		if strings.ContainsAny(v, " \t\"=") {
			return fmt.Sprintf("%q", v)
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
