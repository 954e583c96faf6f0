// Package server exposes the pyramid extraction service over HTTP.
//
// Routes mirror the slide-viewer API:
//
//	GET  /health                   liveness probe
//	GET  /api/files                list available slide files
//	GET  /api/info/:filename       slide metadata (levels, downsamples, properties)
//	GET  /api/thumbnail/:filename  whole-slide thumbnail PNG
//	GET  /api/region               extract a region PNG within the pixel budget
//	GET  /api/stats                color statistics for a region
//	POST /api/save                 save a region server-side or download it
//	GET  /api/config               effective server configuration
//
// Region responses carry extraction metadata in the X-Level-Used,
// X-Level-Downsample, X-Output-Width and X-Output-Height headers.
//
// All parameter validation happens here; the pyramid package assumes
// well-formed requests. Errors use a uniform JSON body of
// {"success": false, "error": <code>, "message": <detail>} with 400 for
// bad parameters, 404 for unknown slides and 500 for decode failures.
package server
