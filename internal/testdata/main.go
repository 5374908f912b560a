package testdata

// Master is a short chart touching most of the notation: each pairs,
// holds, chains, touches, modifiers and an end mark. At 150 bpm a quarter
// beat is 400ms.
const Master = `(150){4}1,2,3,4,
{8}5/6,7,8b,1,2h[4:1],,3-7[4:1],,
{4}C,B2/E8,1$,2x,
{16}1-4-7[2:1],,,,,,,,
{4}Ch[2:1],,1m,8,
5<1[4:1]*-3[4:1],,,
1` + "`" + `2` + "`" + `3` + "`" + `4,,
E
`

// Basic is the easy difficulty of the same song.
const Basic = `(150){4}1,,2,,3/6,,4h[2:1],,,5,,E`

// Maidata is a full song file with two difficulties.
func Maidata() []byte {
	return []byte("&title=Test Song\n" +
		"&artist=Nobody\n" +
		"&wholebpm=150\n" +
		"&first=0.2\n" +
		"&lv_2=3\n" +
		"&lv_5=12+\n" +
		"&inote_2=" + Basic + "\n" +
		"&inote_5=" + Master + "\n")
}
