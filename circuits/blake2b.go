package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// Blake2b-256 in sequential mode (RFC 7693). The parameter word folds in
// digest length 32, fanout 1 and depth 1.
const (
	blake2bChunkBytes = 128
	blake2bParamWord  = 0x01010020
)

var blake2bIV = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b,
	0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f,
	0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

// Message schedule for the 12 rounds; rounds 10 and 11 reuse rows 0 and 1.
var blake2bSigma = [12][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
}

// blake2b256 hashes the first msgLen bytes of msg inside the circuit and
// returns the 256-bit digest. len(msg) must be a positive multiple of the
// 128-byte chunk size. Bytes at positions >= msgLen are masked to zero before
// compression, so the digest depends only on the msgLen-byte prefix no matter
// what the prover assigned to the padding.
func blake2b256(api frontend.API, uapi *uints.BinaryField[uints.U64], msg []uints.U8, msgLen frontend.Variable) [hashSize]uints.U8 {
	if len(msg) == 0 || len(msg)%blake2bChunkBytes != 0 {
		panic(fmt.Sprintf("blake2b256: message buffer must be a positive multiple of %d bytes, got %d", blake2bChunkBytes, len(msg)))
	}
	numChunks := len(msg) / blake2bChunkBytes

	mask := prefixMask(api, len(msg), msgLen)
	masked := make([]uints.U8, len(msg))
	for i := range msg {
		masked[i] = uints.U8{Val: api.Mul(msg[i].Val, mask[i])}
	}

	// Index of the chunk holding byte msgLen-1; compression is frozen past
	// it. An empty message is not a valid header, so msgLen >= 1.
	lastChunk := intDiv(api, api.Sub(msgLen, 1), blake2bChunkBytes)

	h := make([]uints.U64, 8)
	for i := range h {
		h[i] = uints.NewU64(blake2bIV[i])
	}
	h[0] = uints.NewU64(blake2bIV[0] ^ blake2bParamWord)

	done := frontend.Variable(0)
	for i := 0; i < numChunks; i++ {
		chunk := masked[i*blake2bChunkBytes : (i+1)*blake2bChunkBytes]
		var m [16]uints.U64
		for w := 0; w < 16; w++ {
			m[w] = uapi.PackLSB(chunk[w*8 : (w+1)*8]...)
		}

		isLast := api.IsZero(api.Sub(lastChunk, i))
		counter := api.Select(isLast, msgLen, (i+1)*blake2bChunkBytes)
		compressed := blake2bCompress(api, uapi, h, m, counter, isLast)

		// Chunks past the final one leave the state untouched.
		for w := range h {
			h[w] = selectU64(api, uapi, done, h[w], compressed[w])
		}
		done = api.Select(isLast, 1, done)
	}

	var digest [hashSize]uints.U8
	for w := 0; w < 4; w++ {
		wordBytes := uapi.UnpackLSB(h[w])
		copy(digest[w*8:(w+1)*8], wordBytes)
	}
	return digest
}

// blake2bCompress is the F compression function: counter is the low word of
// the byte counter t and final selects the last-block flag.
func blake2bCompress(api frontend.API, uapi *uints.BinaryField[uints.U64], h []uints.U64, m [16]uints.U64, counter, final frontend.Variable) []uints.U64 {
	var v [16]uints.U64
	for i := 0; i < 8; i++ {
		v[i] = h[i]
		v[i+8] = uints.NewU64(blake2bIV[i])
	}
	v[12] = uapi.Xor(v[12], uapi.ValueOf(counter))
	inverted := uapi.Xor(v[14], uints.NewU64(^uint64(0)))
	v[14] = selectU64(api, uapi, final, inverted, v[14])

	for r := 0; r < 12; r++ {
		s := blake2bSigma[r]
		blake2bMix(uapi, &v, 0, 4, 8, 12, m[s[0]], m[s[1]])
		blake2bMix(uapi, &v, 1, 5, 9, 13, m[s[2]], m[s[3]])
		blake2bMix(uapi, &v, 2, 6, 10, 14, m[s[4]], m[s[5]])
		blake2bMix(uapi, &v, 3, 7, 11, 15, m[s[6]], m[s[7]])
		blake2bMix(uapi, &v, 0, 5, 10, 15, m[s[8]], m[s[9]])
		blake2bMix(uapi, &v, 1, 6, 11, 12, m[s[10]], m[s[11]])
		blake2bMix(uapi, &v, 2, 7, 8, 13, m[s[12]], m[s[13]])
		blake2bMix(uapi, &v, 3, 4, 9, 14, m[s[14]], m[s[15]])
	}

	out := make([]uints.U64, 8)
	for i := 0; i < 8; i++ {
		out[i] = uapi.Xor(h[i], v[i], v[i+8])
	}
	return out
}

// blake2bMix is the G mixing function. Right rotations by 32, 24, 16 and 63
// are expressed as left rotations.
func blake2bMix(uapi *uints.BinaryField[uints.U64], v *[16]uints.U64, a, b, c, d int, x, y uints.U64) {
	v[a] = uapi.Add(v[a], v[b], x)
	v[d] = uapi.Lrot(uapi.Xor(v[d], v[a]), 32)
	v[c] = uapi.Add(v[c], v[d])
	v[b] = uapi.Lrot(uapi.Xor(v[b], v[c]), 40)
	v[a] = uapi.Add(v[a], v[b], y)
	v[d] = uapi.Lrot(uapi.Xor(v[d], v[a]), 48)
	v[c] = uapi.Add(v[c], v[d])
	v[b] = uapi.Lrot(uapi.Xor(v[b], v[c]), 1)
}

// selectU64 returns a when sel is 1 and b otherwise, selecting byte-wise.
func selectU64(api frontend.API, uapi *uints.BinaryField[uints.U64], sel frontend.Variable, a, b uints.U64) uints.U64 {
	aBytes := uapi.UnpackLSB(a)
	bBytes := uapi.UnpackLSB(b)
	out := make([]uints.U8, 8)
	for i := range out {
		out[i] = uints.U8{Val: api.Select(sel, aBytes[i].Val, bBytes[i].Val)}
	}
	return uapi.PackLSB(out...)
}
