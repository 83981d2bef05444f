package speech

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int
voice_init(void)
{
	if (espeak_Initialize(AUDIO_OUTPUT_PLAYBACK, 500, NULL, 0) < 0)
	{ return -1; }

	espeak_VOICE specs = { .languages = "en" };
	espeak_SetVoiceByProperties(&specs);

	return 0;
}

static int
voice_say(const char *text, int rate, int pitch)
{
	if (!text)
	{ return -1; }

	espeak_Cancel();
	espeak_SetParameter(espeakRATE, rate, 0);
	espeak_SetParameter(espeakPITCH, pitch, 0);

	if (espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0,
	                 espeakCHARS_AUTO, NULL, NULL) != EE_OK)
	{ return -1; }

	return 0;
}

static void voice_stop(void)  { espeak_Cancel(); }
static void voice_close(void) { espeak_Cancel(); espeak_Terminate(); }
*/
import "C"

import (
	"fmt"
	log "log/slog"
	"sync"
	"unsafe"

	"shopvoice/internal/emotion"
)

// Voice speaks through espeak-ng. Playback is asynchronous; each Speak
// cancels any utterance still in progress before starting the new one.
type Voice struct {
	mu sync.Mutex
}

func NewVoice() (*Voice, error) {
	if rc := C.voice_init(); rc != 0 {
		return nil, fmt.Errorf("espeak init failed: %d", int(rc))
	}
	return &Voice{}, nil
}

func (v *Voice) Speak(text string, state emotion.State) {
	if text == "" {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	p := paramsFor(state)
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	if rc := C.voice_say(ctext, C.int(p.rate), C.int(p.pitch)); rc != 0 {
		log.Warn("Speech synthesis failed", "rc", int(rc))
	}
}

func (v *Voice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	C.voice_stop()
}

func (v *Voice) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	C.voice_close()
}
