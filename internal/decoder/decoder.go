// Package decoder 解码边缘侧 ECG1 捆包与 Polar PMD ECG 帧。
//
// 线上格式（边缘侧打包）：
//
//	捆包:  "ECG1" + 4字节保留 + 1字节帧数 + [2字节小端长度 + 帧数据]...
//	帧:    1字节类型(0x00) + 8字节小端纳秒时间戳 + 1字节帧类型 + 3字节小端补码样本...
//
// 传输层的残缺数据不报错：解码失败返回空结果，调用方跳过该消息。
package decoder

import "encoding/binary"

// BundleMagic ECG1 捆包魔数
const BundleMagic = "ECG1"

const (
	bundleHeaderLen = 9  // 魔数4 + 保留4 + 帧数1
	frameHeaderLen  = 10 // 类型1 + 时间戳8 + 帧类型1
	frameTypeECG    = 0x00
)

// ParseBundle 拆分 ECG1 捆包为独立的 PMD 帧
//
// 任何长度/边界不一致都静默截断，已解析出的帧照常返回。
func ParseBundle(payload []byte) [][]byte {
	if len(payload) < bundleHeaderLen || string(payload[0:4]) != BundleMagic {
		return nil
	}

	count := int(payload[8])
	idx := bundleHeaderLen

	var frames [][]byte
	for i := 0; i < count; i++ {
		if idx+2 > len(payload) {
			break
		}
		frameLen := int(binary.LittleEndian.Uint16(payload[idx : idx+2]))
		idx += 2
		if idx+frameLen > len(payload) {
			break
		}
		frames = append(frames, payload[idx:idx+frameLen])
		idx += frameLen
	}

	return frames
}

// ParseFrame 解码单个 Polar PMD ECG 帧
//
// 返回设备时间戳（纳秒）与符号扩展后的样本序列。
// 格式不符返回 ok=false；末尾不足 3 字节的残缺样本直接丢弃。
func ParseFrame(frame []byte) (ts uint64, samples []int32, ok bool) {
	if len(frame) < frameHeaderLen || frame[0] != frameTypeECG {
		return 0, nil, false
	}

	ts = binary.LittleEndian.Uint64(frame[1:9])
	data := frame[frameHeaderLen:]

	n := len(data) / 3
	if n <= 0 {
		return ts, []int32{}, true
	}

	samples = make([]int32, n)
	for i := 0; i < n; i++ {
		samples[i] = signExtend24(data[i*3 : i*3+3])
	}
	return ts, samples, true
}

// signExtend24 24位小端补码样本扩展为 int32
func signExtend24(b []byte) int32 {
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	if v&0x00800000 != 0 {
		v |= 0xFF000000
	}
	return int32(v)
}

// EncodeFrame 编码单个 PMD ECG 帧（测试与回放工具使用）
func EncodeFrame(ts uint64, samples []int32) []byte {
	frame := make([]byte, frameHeaderLen, frameHeaderLen+len(samples)*3)
	frame[0] = frameTypeECG
	binary.LittleEndian.PutUint64(frame[1:9], ts)
	frame[9] = 0 // 帧类型

	for _, s := range samples {
		v := uint32(s) & 0x00FFFFFF
		frame = append(frame, byte(v), byte(v>>8), byte(v>>16))
	}
	return frame
}

// EncodeBundle 打包多个帧为 ECG1 捆包（测试与回放工具使用）
func EncodeBundle(frames [][]byte) []byte {
	payload := make([]byte, bundleHeaderLen)
	copy(payload[0:4], BundleMagic)
	payload[8] = byte(len(frames))

	for _, f := range frames {
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(f)))
		payload = append(payload, lenBuf[:]...)
		payload = append(payload, f...)
	}
	return payload
}
