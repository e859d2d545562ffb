package config

// Defaults mirroring the netcoupe airspace feed
const (
	// DefaultSourceURL is the OpenAir file published by planeur.net
	DefaultSourceURL = "https://www.planeur.net/_download/airspaces/france.txt"

	// DefaultPayloadFileName is the GeoJSON file written to every target
	DefaultPayloadFileName = "netcoupe-france.geojson"

	// DefaultMetadataFileName is the metadata sidecar written next to the payload
	DefaultMetadataFileName = "netcoupe-france-metadata.json"
)

// DefaultPublishDirectories are the remote directories served to the heatmap and tracemap apps.
var DefaultPublishDirectories = []string{
	"/heatmap/airspacedata",
	"/tracemap/airspacedata",
}
