// Package audio provides the preview players.
//
// BeepPlayer decodes WAV, OGG/Vorbis and MP3 files with the beep library and
// plays them through the system speaker, caching decoded buffers for a while.
// ExecPlayer hands the file to an OS command (paplay, aplay, afplay or
// PowerShell) and is used where beep cannot decode the platform's sounds.
// Both resolve locators through an alias table first, so catalog entries such
// as "system_default" or "chime" map to real files.
package audio
