package imager

// Premultiply scales every channel of every visible pixel by the layer
// opacity, in place: c' = round(c * opacity / 255). Pixels whose alpha is
// zero are left untouched and opacity 255 leaves the buffer unchanged.
//
// pix is a packed RGBA buffer; a trailing partial pixel is ignored.
func Premultiply(pix []byte, opacity uint8) {
	if opacity == 255 {
		return
	}
	op := uint32(opacity)
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] == 0 {
			continue
		}
		pix[i+0] = scale(pix[i+0], op)
		pix[i+1] = scale(pix[i+1], op)
		pix[i+2] = scale(pix[i+2], op)
		pix[i+3] = scale(pix[i+3], op)
	}
}

// scale computes round(c*op/255). The product is never exactly halfway
// between two integers because 255 is odd, so +127 rounds correctly.
func scale(c uint8, op uint32) uint8 {
	return uint8((uint32(c)*op + 127) / 255)
}
