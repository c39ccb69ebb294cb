// Package audio plays a short sound cue when a toast is raised.
// Sounds are configured per toast type and decoded with beep
// (WAV, OGG and MP3).
package audio
