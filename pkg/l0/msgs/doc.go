// Package msgs provides payload schemas carried by L0 channels.
package msgs

// All payloads are packed little-endian structures.
// Channel ids are assigned per direction, the same id carries different
// payloads from robot to host and from host to robot.
