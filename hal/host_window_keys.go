//go:build cgo

package hal

import (
	"kbshell/sys/keyboard"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type ebitenKey struct {
	key ebiten.Key
	vk  keyboard.VirtualKeyCode
}

func mod(m keyboard.Modifier) keyboard.VirtualKeyCode { return keyboard.ModifierKey(m) }
func ctl(c keyboard.Control) keyboard.VirtualKeyCode  { return keyboard.ControlKey(c) }

// ebitenKeys lists modifiers first so that within one frame a modifier press
// is reported before the keys it modifies.
var ebitenKeys = []ebitenKey{
	{ebiten.KeyShiftLeft, mod(keyboard.LeftShift)},
	{ebiten.KeyShiftRight, mod(keyboard.RightShift)},
	{ebiten.KeyCapsLock, mod(keyboard.CapsLock)},
	{ebiten.KeyNumLock, mod(keyboard.NumLock)},
	{ebiten.KeyScrollLock, mod(keyboard.ScrollLock)},
	{ebiten.KeyControlLeft, mod(keyboard.LeftCtrl)},
	{ebiten.KeyControlRight, mod(keyboard.RightCtrl)},
	{ebiten.KeyAltLeft, mod(keyboard.LeftAlt)},
	{ebiten.KeyAltRight, mod(keyboard.RightAlt)},
	{ebiten.KeyMetaLeft, mod(keyboard.LeftMeta)},
	{ebiten.KeyMetaRight, mod(keyboard.RightMeta)},

	{ebiten.KeyA, ctl(keyboard.KeyA)}, {ebiten.KeyB, ctl(keyboard.KeyB)},
	{ebiten.KeyC, ctl(keyboard.KeyC)}, {ebiten.KeyD, ctl(keyboard.KeyD)},
	{ebiten.KeyE, ctl(keyboard.KeyE)}, {ebiten.KeyF, ctl(keyboard.KeyF)},
	{ebiten.KeyG, ctl(keyboard.KeyG)}, {ebiten.KeyH, ctl(keyboard.KeyH)},
	{ebiten.KeyI, ctl(keyboard.KeyI)}, {ebiten.KeyJ, ctl(keyboard.KeyJ)},
	{ebiten.KeyK, ctl(keyboard.KeyK)}, {ebiten.KeyL, ctl(keyboard.KeyL)},
	{ebiten.KeyM, ctl(keyboard.KeyM)}, {ebiten.KeyN, ctl(keyboard.KeyN)},
	{ebiten.KeyO, ctl(keyboard.KeyO)}, {ebiten.KeyP, ctl(keyboard.KeyP)},
	{ebiten.KeyQ, ctl(keyboard.KeyQ)}, {ebiten.KeyR, ctl(keyboard.KeyR)},
	{ebiten.KeyS, ctl(keyboard.KeyS)}, {ebiten.KeyT, ctl(keyboard.KeyT)},
	{ebiten.KeyU, ctl(keyboard.KeyU)}, {ebiten.KeyV, ctl(keyboard.KeyV)},
	{ebiten.KeyW, ctl(keyboard.KeyW)}, {ebiten.KeyX, ctl(keyboard.KeyX)},
	{ebiten.KeyY, ctl(keyboard.KeyY)}, {ebiten.KeyZ, ctl(keyboard.KeyZ)},

	{ebiten.KeyDigit0, ctl(keyboard.Digit0)}, {ebiten.KeyDigit1, ctl(keyboard.Digit1)},
	{ebiten.KeyDigit2, ctl(keyboard.Digit2)}, {ebiten.KeyDigit3, ctl(keyboard.Digit3)},
	{ebiten.KeyDigit4, ctl(keyboard.Digit4)}, {ebiten.KeyDigit5, ctl(keyboard.Digit5)},
	{ebiten.KeyDigit6, ctl(keyboard.Digit6)}, {ebiten.KeyDigit7, ctl(keyboard.Digit7)},
	{ebiten.KeyDigit8, ctl(keyboard.Digit8)}, {ebiten.KeyDigit9, ctl(keyboard.Digit9)},

	{ebiten.KeySpace, ctl(keyboard.Space)},
	{ebiten.KeyEnter, ctl(keyboard.Enter)},
	{ebiten.KeyTab, ctl(keyboard.Tab)},
	{ebiten.KeyBackspace, ctl(keyboard.Backspace)},
	{ebiten.KeyEscape, ctl(keyboard.Escape)},
	{ebiten.KeyDelete, ctl(keyboard.Delete)},
	{ebiten.KeyInsert, ctl(keyboard.Insert)},
	{ebiten.KeyHome, ctl(keyboard.Home)},
	{ebiten.KeyEnd, ctl(keyboard.End)},
	{ebiten.KeyPageUp, ctl(keyboard.PageUp)},
	{ebiten.KeyPageDown, ctl(keyboard.PageDown)},
	{ebiten.KeyArrowUp, ctl(keyboard.Up)},
	{ebiten.KeyArrowDown, ctl(keyboard.Down)},
	{ebiten.KeyArrowLeft, ctl(keyboard.Left)},
	{ebiten.KeyArrowRight, ctl(keyboard.Right)},

	{ebiten.KeyMinus, ctl(keyboard.Minus)},
	{ebiten.KeyEqual, ctl(keyboard.Equal)},
	{ebiten.KeyBracketLeft, ctl(keyboard.LeftBracket)},
	{ebiten.KeyBracketRight, ctl(keyboard.RightBracket)},
	{ebiten.KeyBackslash, ctl(keyboard.Backslash)},
	{ebiten.KeySemicolon, ctl(keyboard.Semicolon)},
	{ebiten.KeyQuote, ctl(keyboard.Apostrophe)},
	{ebiten.KeyBackquote, ctl(keyboard.Grave)},
	{ebiten.KeyComma, ctl(keyboard.Comma)},
	{ebiten.KeyPeriod, ctl(keyboard.Period)},
	{ebiten.KeySlash, ctl(keyboard.Slash)},

	{ebiten.KeyF1, ctl(keyboard.F1)}, {ebiten.KeyF2, ctl(keyboard.F2)},
	{ebiten.KeyF3, ctl(keyboard.F3)}, {ebiten.KeyF4, ctl(keyboard.F4)},
	{ebiten.KeyF5, ctl(keyboard.F5)}, {ebiten.KeyF6, ctl(keyboard.F6)},
	{ebiten.KeyF7, ctl(keyboard.F7)}, {ebiten.KeyF8, ctl(keyboard.F8)},
	{ebiten.KeyF9, ctl(keyboard.F9)}, {ebiten.KeyF10, ctl(keyboard.F10)},
	{ebiten.KeyF11, ctl(keyboard.F11)}, {ebiten.KeyF12, ctl(keyboard.F12)},

	{ebiten.KeyNumpad0, ctl(keyboard.Kp0)}, {ebiten.KeyNumpad1, ctl(keyboard.Kp1)},
	{ebiten.KeyNumpad2, ctl(keyboard.Kp2)}, {ebiten.KeyNumpad3, ctl(keyboard.Kp3)},
	{ebiten.KeyNumpad4, ctl(keyboard.Kp4)}, {ebiten.KeyNumpad5, ctl(keyboard.Kp5)},
	{ebiten.KeyNumpad6, ctl(keyboard.Kp6)}, {ebiten.KeyNumpad7, ctl(keyboard.Kp7)},
	{ebiten.KeyNumpad8, ctl(keyboard.Kp8)}, {ebiten.KeyNumpad9, ctl(keyboard.Kp9)},
	{ebiten.KeyNumpadDecimal, ctl(keyboard.KpDecimal)},
	{ebiten.KeyNumpadAdd, ctl(keyboard.KpPlus)},
	{ebiten.KeyNumpadSubtract, ctl(keyboard.KpMinus)},
	{ebiten.KeyNumpadMultiply, ctl(keyboard.KpMultiply)},
	{ebiten.KeyNumpadDivide, ctl(keyboard.KpDivide)},
	{ebiten.KeyNumpadEnter, ctl(keyboard.KpEnter)},
}

// pollEbitenKeys reports this frame's presses, then its releases in reverse
// table order so that modifiers are released after the keys they modify.
func pollEbitenKeys(k *hostKeyboard) {
	k.retry()
	for _, ek := range ebitenKeys {
		if inpututil.IsKeyJustPressed(ek.key) {
			k.emit(keyboard.KeyDown(ek.vk))
		}
	}
	for i := len(ebitenKeys) - 1; i >= 0; i-- {
		ek := ebitenKeys[i]
		if inpututil.IsKeyJustReleased(ek.key) {
			k.emit(keyboard.KeyUp(ek.vk))
		}
	}
}
