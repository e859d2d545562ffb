// Package converters turns raw OpenAir text into a GeoJSON feature collection.
//
// # Architecture
//
//	RawSource → scoped temp file → Backend → *geojson.FeatureCollection
//
// Both backends start by writing the source text to a temporary file that is
// removed on every return path, including backend failures:
//
//   - LocalConverter: runs the in-process OpenAir parser (internal/openair) on the file
//   - RemoteConverter: uploads the file as multipart form data
//     (skipFailures=true, upload=<file>) to a conversion web service
//
// The backend is chosen once from configuration with New and never switched per call.
// Callers only see the Converter interface, so publishing and metadata code stays
// the same whichever backend produced the payload.
//
// # Example Usage
//
//	converter, err := converters.New(cfg.Converter)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fc, err := converter.Convert(ctx, raw)
package converters
