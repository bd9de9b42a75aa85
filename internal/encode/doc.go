// Package encode turns an ordered composite-frame sequence into a playable
// media file by driving an external ffmpeg process.
//
// The format policy is fixed: mp4 output goes through a fast MPEG-4 AVI
// intermediate and is then re-encoded with libx264 at a visually-lossless
// leaning quality and the slow preset; avi output stops at the intermediate;
// gif output is a single palette-based pass. Quality and preset constants
// are part of the contract, not user knobs. The same intermediate path
// serves both mp4 and avi so the two formats share one code path.
package encode
