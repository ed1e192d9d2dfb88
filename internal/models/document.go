// Package models defines the fully-defaulted aquarium document record.
package models

// Document is the normalised form of a loaded aquarium JSON document. Tank is
// nil when the section is absent; the lists are never nil.
type Document struct {
	Tank         *Tank         `json:"tank,omitempty"`
	Residents    []Resident    `json:"residents"`
	Measurements []Measurement `json:"measurements"`
	Events       []Event       `json:"events"`
	Photos       []Photo       `json:"photos"`
	PhotosBase   Field         `json:"photosBase"`
}

// Tank describes the aquarium itself.
type Tank struct {
	Name    Field `json:"name"`
	VolumeL Field `json:"volumeL"`
	Start   Field `json:"start"`
	Notes   Field `json:"notes"`
}

// Resident types.
const (
	ResidentFish   = "fish"
	ResidentShrimp = "shrimp"
	ResidentSnail  = "snail"
	ResidentPlant  = "plant"
	ResidentAlgae  = "algae"
	ResidentOther  = "other"
)

// Resident is a livestock or plant entry.
type Resident struct {
	Label  Field `json:"label"`
	Common Field `json:"common"`
	Sci    Field `json:"sci"`
	Type   Field `json:"type"`
	Count  Field `json:"count"`
	Date   Field `json:"date"`
	Notes  Field `json:"notes"`
}

// Group returns the key the resident is grouped under.
func (r Resident) Group() string {
	return r.Type.Or(ResidentOther)
}

// Measurement is a timestamped water-quality reading.
type Measurement struct {
	T     Field `json:"t"`
	PH    Field `json:"ph"`
	Temp  Field `json:"temp"`
	GH    Field `json:"gh"`
	KH    Field `json:"kh"`
	NO3   Field `json:"no3"`
	NO2   Field `json:"no2"`
	NH3   Field `json:"nh3"`
	Notes Field `json:"notes"`
}

// Event types.
const (
	EventWaterChange    = "water_change"
	EventFilterClean    = "filter_clean"
	EventDose           = "dose"
	EventTreatment      = "treatment"
	EventNote           = "note"
	EventAddResident    = "add_resident"
	EventRemoveResident = "remove_resident"
	EventSetup          = "setup"
	EventHardscape      = "hardscape"
	EventPlanting       = "planting"
)

// Event is a logged maintenance or milestone action.
type Event struct {
	T     Field `json:"t"`
	Type  Field `json:"type"`
	V1    Field `json:"v1"`
	Notes Field `json:"notes"`
}

// Photo is a single image reference.
type Photo struct {
	URL      Field `json:"url"`
	Caption  Field `json:"caption"`
	TakenAt  Field `json:"takenAt"`
	Resident Field `json:"resident"`
}

// Empty reports whether the document has nothing to show.
func (d *Document) Empty() bool {
	return d.Tank == nil && len(d.Residents) == 0 && len(d.Measurements) == 0 &&
		len(d.Events) == 0 && len(d.Photos) == 0
}
