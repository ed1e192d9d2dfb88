package mcpserver

// DocumentFormatContract describes the aquarium JSON document accepted by
// load_document, the page and the upload endpoint.
const DocumentFormatContract = `# AquaTrack Document Format

A document is one JSON object. Every key is optional; missing lists are
treated as empty and a missing tank hides the tank panel.

## Top level

| Key          | Type   | Notes                                                   |
|--------------|--------|---------------------------------------------------------|
| tank         | object | name, volumeL (number, litres), start (date), notes      |
| residents    | array  | livestock, plants and algae                             |
| measurements | array  | water readings, shown in document order                 |
| events       | array  | maintenance log, shown in document order                |
| photos       | array  | shown newest first                                      |
| photosBase   | string | base URL for relative photo paths                       |

## residents[]

label, common, sci, type, count, date, notes.
type is one of fish, shrimp, snail, plant, algae, other. A missing type is
grouped under "other"; any other value gets its own group. Entries are sorted
by label within a group, ignoring case.

## measurements[]

t (timestamp), ph, temp (°C), gh, kh, no3, no2, nh3, notes. Missing values
show as "—".

## events[]

t (timestamp), type, v1 (short detail), notes. Known types:
water_change, filter_clean, dose, treatment, note, add_resident,
remove_resident, setup, hardscape, planting.

## photos[]

url, caption, takenAt (date), resident. Absolute and data: URLs are used as
is; relative URLs resolve against the base query parameter, then photosBase.
Photos without takenAt keep their relative order and sort after dated ones
taken after 1970.

## Dates

ISO-8601 strings ("2024-10-04", "2024-10-04T09:00:00Z") or epoch
milliseconds. A date without a time is midnight UTC.

## Example

` + "```" + `json
{
  "tank": {"name": "Nano cube", "volumeL": 30, "start": "2024-10-04"},
  "residents": [{"label": "Neocaridina", "type": "shrimp", "count": 10}],
  "measurements": [{"t": "2024-10-11T08:00:00Z", "ph": 7.0, "no3": 10}],
  "events": [{"t": "2024-10-12T18:00:00Z", "type": "water_change", "v1": "25%"}],
  "photos": [{"url": "front.jpg", "caption": "Day 7", "takenAt": "2024-10-11"}],
  "photosBase": "https://example.org/tank/"
}
` + "```" + `
`
