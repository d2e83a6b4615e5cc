package trace

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
)

// Header is the CSV column order. Consumers depend on it; do not reorder.
var Header = []string{
	"time", "setpoint", "process_variable", "manipulated_variable", "error", "update_count",
}

// WriteCSV serializes the series as one header row plus one row per
// sample in append order. An empty series writes nothing.
func (s *Series) WriteCSV(w io.Writer) error {
	if s.Len() == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		row := []string{
			strconv.FormatFloat(s.Time[i], 'g', -1, 64),
			strconv.FormatFloat(s.Setpoint[i], 'g', -1, 64),
			strconv.FormatFloat(s.Process[i], 'g', -1, 64),
			strconv.FormatFloat(s.Output[i], 'g', -1, 64),
			strconv.FormatFloat(s.Err[i], 'g', -1, 64),
			strconv.FormatUint(s.Updates[i], 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportData is the JSON export shape.
type ExportData struct {
	Name     string    `json:"name"`
	Period   float64   `json:"period"`
	Samples  int       `json:"samples"`
	Time     []float64 `json:"time"`
	Setpoint []float64 `json:"setpoint"`
	Process  []float64 `json:"process_variable"`
	Output   []float64 `json:"manipulated_variable"`
	Err      []float64 `json:"error"`
	Updates  []uint64  `json:"update_count"`
}

// WriteJSON serializes the series with run identity attached.
func (s *Series) WriteJSON(w io.Writer, name string, period float64) error {
	data := ExportData{
		Name:     name,
		Period:   period,
		Samples:  s.Len(),
		Time:     s.Time,
		Setpoint: s.Setpoint,
		Process:  s.Process,
		Output:   s.Output,
		Err:      s.Err,
		Updates:  s.Updates,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSVFile writes the series to path, creating or truncating it.
// An empty series creates no file.
func (s *Series) ExportCSVFile(path string) error {
	if s.Len() == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteCSV(f)
}

// ExportJSONFile writes the JSON export to path.
func (s *Series) ExportJSONFile(path string, name string, period float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteJSON(f, name, period)
}
