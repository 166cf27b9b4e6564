package services

import (
	"fmt"

	"fishlog/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Report"

var reportColumns = []string{
	"ID", "Date", "Location", "Species", "Count", "Bait", "Size", "Water", "Platform", "Comments", "Image", "Lat", "Lng",
}

// ExportReport renders rows as an XLSX workbook.
func (s *ObservationService) ExportReport(rows []models.Observation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name report sheet: %w", err)
	}

	for col, title := range reportColumns {
		if err := setCell(f, col+1, 1, title); err != nil {
			return nil, err
		}
	}
	for i, r := range rows {
		values := []interface{}{
			r.ID, r.Date, r.Location, r.Species, r.Count, r.Bait, r.Size, r.Water, r.Platform, r.Comments,
			deref(r.Image), derefFloat(r.Lat), derefFloat(r.Lng),
		}
		for col, v := range values {
			if err := setCell(f, col+1, i+2, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid report cell: %w", err)
	}
	if err := f.SetCellValue(reportSheet, cell, v); err != nil {
		return fmt.Errorf("failed to set report cell %s: %w", cell, err)
	}
	return nil
}

func deref(s *string) interface{} {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

// MapFeatures returns the list page rows that carry both coordinates as GeoJSON points.
func (s *ObservationService) MapFeatures(rows []models.Observation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range rows {
		if !r.HasCoordinates() {
			continue
		}
		f := geojson.NewFeature(orb.Point{*r.Lng, *r.Lat})
		f.ID = r.ID
		f.Properties["date"] = r.Date
		f.Properties["species"] = r.Species
		f.Properties["location"] = r.Location
		f.Properties["count"] = r.Count
		if r.Image != nil {
			f.Properties["image"] = *r.Image
		}
		fc.Append(f)
	}
	return fc
}
