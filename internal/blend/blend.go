// Package blend provides straight-alpha compositing for 8-bit RGBA pixels.
//
// Unlike premultiplied pipelines, pixel canvases store straight
// (non-premultiplied) colors, so every operator here takes and returns
// straight channels. Results are exact for the two boundary cases the
// canvas relies on: an opaque source replaces the destination, and a fully
// transparent source leaves it unchanged.
package blend

// SourceOver composites a straight-alpha source over a straight-alpha
// destination.
//
//	outA = Sa + Da*(1-Sa)
//	outC = (Sc*Sa + Dc*Da*(1-Sa)) / outA
//
// All arithmetic is done in integers scaled by 255 and rounded to nearest.
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}

	ws := uint32(sa) * 255
	wd := uint32(da) * uint32(inv255(sa))
	den := ws + wd
	if den == 0 {
		return 0, 0, 0, 0
	}

	mix := func(s, d byte) byte {
		return byte((uint32(s)*ws + uint32(d)*wd + den/2) / den)
	}
	return mix(sr, dr), mix(sg, dg), mix(sb, db), addDiv255(sa, mulDiv255Exact(da, inv255(sa)))
}
