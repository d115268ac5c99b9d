// Package audio captures PCM samples from the system microphone by
// supervising external capture tools. Three backends are supported, probed
// in preference order: parec (PulseAudio), pw-cat (PipeWire), and sox
// (ALSA). Availability is checked on every call so a tool installed or
// removed mid-session is picked up without restarting the daemon.
package audio
