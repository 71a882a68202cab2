//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
)

// Error codes returned to JavaScript
const (
	ErrorNone              = iota // Success
	ErrorInvalidArgs              // Invalid function arguments
	ErrorProcessing               // Error during audio processing
	ErrorSpectrogramFailed        // Spectrogram generation failed
	ErrorPeakExtraction           // Peak extraction failed
	ErrorHashGeneration           // Hash generation failed
)

// generateFingerprint processes audio samples and returns fingerprint landmarks.
//
// JavaScript signature:
//
//	generateFingerprint(audioArray, sampleRate, channels)
//
// Parameters:
//   - audioArray: Float64Array or Array containing audio samples (interleaved if stereo)
//   - sampleRate: Number - sample rate of audioArray, in Hz
//   - channels: Number - number of channels (1 = mono, 2 = stereo)
//
// Returns: JavaScript object { error: number, data: array | string }
//   - error: 0 = success, >0 = error code (see constants above)
//   - data: on success, array of {hash: number, anchor_idx: number} — the
//     shape the server's /api/match/landmarks endpoint expects, so a
//     browser client can fingerprint locally and never upload raw audio.
func generateFingerprint(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: audioArray, sampleRate, channels")
	}

	audioDataJS := args[0]
	sampleRateJS := args[1]
	channelsJS := args[2]

	if audioDataJS.Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray must be an Array or Float64Array")
	}
	if sampleRateJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate must be a number")
	}
	if channelsJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "channels must be a number")
	}

	sampleRate := sampleRateJS.Int()
	channels := channelsJS.Int()

	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", sampleRate))
	}
	if channels < 1 || channels > 2 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Channels must be 1 (mono) or 2 (stereo), got: %d", channels))
	}

	length := audioDataJS.Length()
	if length == 0 {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray is empty")
	}

	samples := make([]float32, length)
	for i := 0; i < length; i++ {
		val := audioDataJS.Index(i)
		if val.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("audioArray element %d is not a number", i))
		}
		samples[i] = float32(val.Float())
	}

	p := fingerprint.DefaultParams()

	spec, err := fingerprint.ToSpectrogram(samples, channels, sampleRate, p)
	if err != nil {
		return makeErrorResponse(ErrorSpectrogramFailed, fmt.Sprintf("Failed to generate spectrogram: %v", err))
	}

	peaks := fingerprint.ExtractPeaks(spec, p)
	if len(peaks) == 0 {
		return makeErrorResponse(ErrorPeakExtraction, "No peaks found in audio (audio may be silent or too short)")
	}

	landmarks := fingerprint.GenerateHashes(peaks, p)
	if len(landmarks) == 0 {
		return makeErrorResponse(ErrorHashGeneration, "No fingerprint landmarks generated")
	}

	landmarkArray := js.Global().Get("Array").New()
	for i, lm := range landmarks {
		obj := js.Global().Get("Object").New()
		obj.Set("hash", float64(uint32(lm.Hash)))
		obj.Set("anchor_idx", lm.AnchorIdx)
		landmarkArray.SetIndex(i, obj)
	}

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", landmarkArray)
	return result
}

// makeErrorResponse creates a JavaScript error response object
func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

// main is the entry point for the WASM module
func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "AcousticDNA WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("generateFingerprint", js.FuncOf(generateFingerprint))

	if !console.IsUndefined() {
		console.Call("log", "generateFingerprint function registered")
	}

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
		if !console.IsUndefined() {
			console.Call("log", "wasmReady event dispatched")
		}
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined!")
	}

	if !console.IsUndefined() {
		console.Call("log", "AcousticDNA WASM module loaded and ready")
	}

	// Keep the Go runtime alive; without this the program exits and the
	// registered function becomes unavailable.
	<-done
}
