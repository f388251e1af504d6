package nova

// SystemDumpRequest asks the unit with device id dev for its system dump.
func SystemDumpRequest(dev byte) []byte {
	return []byte{sysexStart, tcID1, tcID2, tcID3, dev, modelNova, msgRequest, dataSystem, sysexEnd}
}

// UserBankRequest asks for all 60 user presets.
func UserBankRequest() []byte {
	return []byte{sysexStart, tcID1, tcID2, tcID3, 0x00, modelNova, msgRequest, dataUserBank, sysexEnd}
}

// IsDumpStart reports whether msg opens a Nova System dump of kind k.
func IsDumpStart(msg []byte, k Kind) bool {
	got, err := Identify(msg)
	return err == nil && got == k
}
