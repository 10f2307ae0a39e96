package reviews

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"testimonials/pkg/models"
)

var csvHeader = []string{"id", "rating", "comment", "reply", "date"}

func WriteCSV(w io.Writer, reviews []models.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reviews {
		if err := cw.Write([]string{r.ID, strconv.Itoa(r.Rating), r.Comment, r.Reply, r.Date}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads rows written by WriteCSV. Columns are matched by header
// name so extra or reordered columns are fine.
func ReadCSV(r io.Reader) ([]models.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["rating"]; !ok {
		return nil, errors.New("csv: missing rating column")
	}
	if _, ok := idx["comment"]; !ok {
		return nil, errors.New("csv: missing comment column")
	}

	col := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []models.Review
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rating, err := strconv.Atoi(strings.TrimSpace(col(row, "rating")))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rating: %w", line, err)
		}
		out = append(out, models.Review{
			ID:      strings.TrimSpace(col(row, "id")),
			Rating:  rating,
			Comment: col(row, "comment"),
			Reply:   col(row, "reply"),
			Date:    col(row, "date"),
		})
	}
	return out, nil
}
