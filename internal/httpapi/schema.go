package httpapi

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Only location is required; source narrows the sweep to one registry entry.
const requestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["location"],
  "properties": {
    "source": {
      "enum": [
        "county_records",
        "google_places",
        "yelp",
        "openstreetmap",
        "census",
        "auction_com",
        "biggerpockets",
        "public_auctions"
      ]
    },
    "location": {"type": "string", "minLength": 1},
    "property_type": {"type": "string"},
    "radius": {"type": "number", "minimum": 0}
  }
}`

var requestSchema = jsonschema.MustCompileString("free_data_request.json", requestSchemaJSON)
