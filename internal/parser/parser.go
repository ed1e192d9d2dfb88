// Package parser turns raw aquarium JSON into a fully-defaulted models.Document.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/starford/aquatrack/internal/apperr"
	"github.com/starford/aquatrack/internal/models"
)

// Parse decodes data and normalises it. Malformed JSON yields apperr.ErrParse;
// a well-formed value that is not an object yields apperr.ErrShape.
func Parse(data []byte) (*models.Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, apperr.ErrShape
	}
	return Normalize(root), nil
}

// Normalize converts a decoded root object. Missing or mistyped containers
// fall back to their defaults: a nil Tank and empty lists.
func Normalize(root map[string]any) *models.Document {
	doc := &models.Document{
		Residents:    []models.Resident{},
		Measurements: []models.Measurement{},
		Events:       []models.Event{},
		Photos:       []models.Photo{},
		PhotosBase:   models.FieldOf(root["photosBase"]),
	}

	if t, ok := root["tank"].(map[string]any); ok {
		doc.Tank = &models.Tank{
			Name:    field(t, "name"),
			VolumeL: field(t, "volumeL"),
			Start:   field(t, "start"),
			Notes:   field(t, "notes"),
		}
	}

	for _, o := range objects(root["residents"]) {
		doc.Residents = append(doc.Residents, models.Resident{
			Label:  field(o, "label"),
			Common: field(o, "common"),
			Sci:    field(o, "sci"),
			Type:   field(o, "type"),
			Count:  field(o, "count"),
			Date:   field(o, "date"),
			Notes:  field(o, "notes"),
		})
	}

	for _, o := range objects(root["measurements"]) {
		doc.Measurements = append(doc.Measurements, models.Measurement{
			T:     field(o, "t"),
			PH:    field(o, "ph"),
			Temp:  field(o, "temp"),
			GH:    field(o, "gh"),
			KH:    field(o, "kh"),
			NO3:   field(o, "no3"),
			NO2:   field(o, "no2"),
			NH3:   field(o, "nh3"),
			Notes: field(o, "notes"),
		})
	}

	for _, o := range objects(root["events"]) {
		doc.Events = append(doc.Events, models.Event{
			T:     field(o, "t"),
			Type:  field(o, "type"),
			V1:    field(o, "v1"),
			Notes: field(o, "notes"),
		})
	}

	for _, o := range objects(root["photos"]) {
		doc.Photos = append(doc.Photos, models.Photo{
			URL:      field(o, "url"),
			Caption:  field(o, "caption"),
			TakenAt:  field(o, "takenAt"),
			Resident: field(o, "resident"),
		})
	}

	return doc
}

// objects returns the elements of v when it is an array. Elements that are
// not objects become empty records so positions are preserved.
func objects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, len(arr))
	for i, item := range arr {
		if o, ok := item.(map[string]any); ok {
			out[i] = o
		}
	}
	return out
}

func field(o map[string]any, key string) models.Field {
	if o == nil {
		return models.Field{}
	}
	return models.FieldOf(o[key])
}
