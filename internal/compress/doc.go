// Package compress post-processes downloaded media with ffmpeg. It extracts
// the audio track into the configured codec for engines that cannot
// transcode on their own.
package compress
