// +build 386

package trap

import (
	"unsafe"

	"novakernel/internal/arch"
)

func lidt(pd unsafe.Pointer) { arch.Lidt(pd) }

// The 256 vector entry points defined in vectors_386.s, one per IDT
// slot. Declared with no body; the assembler provides it.
func vector0()
func vector1()
func vector2()
func vector3()
func vector4()
func vector5()
func vector6()
func vector7()
func vector8()
func vector9()
func vector10()
func vector11()
func vector12()
func vector13()
func vector14()
func vector15()
func vector16()
func vector17()
func vector18()
func vector19()
func vector20()
func vector21()
func vector22()
func vector23()
func vector24()
func vector25()
func vector26()
func vector27()
func vector28()
func vector29()
func vector30()
func vector31()
func vector32()
func vector33()
func vector34()
func vector35()
func vector36()
func vector37()
func vector38()
func vector39()
func vector40()
func vector41()
func vector42()
func vector43()
func vector44()
func vector45()
func vector46()
func vector47()
func vector48()
func vector49()
func vector50()
func vector51()
func vector52()
func vector53()
func vector54()
func vector55()
func vector56()
func vector57()
func vector58()
func vector59()
func vector60()
func vector61()
func vector62()
func vector63()
func vector64()
func vector65()
func vector66()
func vector67()
func vector68()
func vector69()
func vector70()
func vector71()
func vector72()
func vector73()
func vector74()
func vector75()
func vector76()
func vector77()
func vector78()
func vector79()
func vector80()
func vector81()
func vector82()
func vector83()
func vector84()
func vector85()
func vector86()
func vector87()
func vector88()
func vector89()
func vector90()
func vector91()
func vector92()
func vector93()
func vector94()
func vector95()
func vector96()
func vector97()
func vector98()
func vector99()
func vector100()
func vector101()
func vector102()
func vector103()
func vector104()
func vector105()
func vector106()
func vector107()
func vector108()
func vector109()
func vector110()
func vector111()
func vector112()
func vector113()
func vector114()
func vector115()
func vector116()
func vector117()
func vector118()
func vector119()
func vector120()
func vector121()
func vector122()
func vector123()
func vector124()
func vector125()
func vector126()
func vector127()
func vector128()
func vector129()
func vector130()
func vector131()
func vector132()
func vector133()
func vector134()
func vector135()
func vector136()
func vector137()
func vector138()
func vector139()
func vector140()
func vector141()
func vector142()
func vector143()
func vector144()
func vector145()
func vector146()
func vector147()
func vector148()
func vector149()
func vector150()
func vector151()
func vector152()
func vector153()
func vector154()
func vector155()
func vector156()
func vector157()
func vector158()
func vector159()
func vector160()
func vector161()
func vector162()
func vector163()
func vector164()
func vector165()
func vector166()
func vector167()
func vector168()
func vector169()
func vector170()
func vector171()
func vector172()
func vector173()
func vector174()
func vector175()
func vector176()
func vector177()
func vector178()
func vector179()
func vector180()
func vector181()
func vector182()
func vector183()
func vector184()
func vector185()
func vector186()
func vector187()
func vector188()
func vector189()
func vector190()
func vector191()
func vector192()
func vector193()
func vector194()
func vector195()
func vector196()
func vector197()
func vector198()
func vector199()
func vector200()
func vector201()
func vector202()
func vector203()
func vector204()
func vector205()
func vector206()
func vector207()
func vector208()
func vector209()
func vector210()
func vector211()
func vector212()
func vector213()
func vector214()
func vector215()
func vector216()
func vector217()
func vector218()
func vector219()
func vector220()
func vector221()
func vector222()
func vector223()
func vector224()
func vector225()
func vector226()
func vector227()
func vector228()
func vector229()
func vector230()
func vector231()
func vector232()
func vector233()
func vector234()
func vector235()
func vector236()
func vector237()
func vector238()
func vector239()
func vector240()
func vector241()
func vector242()
func vector243()
func vector244()
func vector245()
func vector246()
func vector247()
func vector248()
func vector249()
func vector250()
func vector251()
func vector252()
func vector253()
func vector254()
func vector255()

// dispatchTrampoline is alltraps' one call into Go; it exists so the
// assembly doesn't need to know Dispatch's calling convention beyond
// "takes one *TrapFrame argument on the stack".
func dispatchTrampoline(tf *TrapFrame) {
	Dispatch(tf)
}

// funcPC recovers the raw entry address of a bodiless, assembly-backed
// func value: for a non-closure function the interface's second word
// is itself the address of a word holding the PC.
func funcPC(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}

func init() {
	fns := [256]func(){
		vector0,
		vector1,
		vector2,
		vector3,
		vector4,
		vector5,
		vector6,
		vector7,
		vector8,
		vector9,
		vector10,
		vector11,
		vector12,
		vector13,
		vector14,
		vector15,
		vector16,
		vector17,
		vector18,
		vector19,
		vector20,
		vector21,
		vector22,
		vector23,
		vector24,
		vector25,
		vector26,
		vector27,
		vector28,
		vector29,
		vector30,
		vector31,
		vector32,
		vector33,
		vector34,
		vector35,
		vector36,
		vector37,
		vector38,
		vector39,
		vector40,
		vector41,
		vector42,
		vector43,
		vector44,
		vector45,
		vector46,
		vector47,
		vector48,
		vector49,
		vector50,
		vector51,
		vector52,
		vector53,
		vector54,
		vector55,
		vector56,
		vector57,
		vector58,
		vector59,
		vector60,
		vector61,
		vector62,
		vector63,
		vector64,
		vector65,
		vector66,
		vector67,
		vector68,
		vector69,
		vector70,
		vector71,
		vector72,
		vector73,
		vector74,
		vector75,
		vector76,
		vector77,
		vector78,
		vector79,
		vector80,
		vector81,
		vector82,
		vector83,
		vector84,
		vector85,
		vector86,
		vector87,
		vector88,
		vector89,
		vector90,
		vector91,
		vector92,
		vector93,
		vector94,
		vector95,
		vector96,
		vector97,
		vector98,
		vector99,
		vector100,
		vector101,
		vector102,
		vector103,
		vector104,
		vector105,
		vector106,
		vector107,
		vector108,
		vector109,
		vector110,
		vector111,
		vector112,
		vector113,
		vector114,
		vector115,
		vector116,
		vector117,
		vector118,
		vector119,
		vector120,
		vector121,
		vector122,
		vector123,
		vector124,
		vector125,
		vector126,
		vector127,
		vector128,
		vector129,
		vector130,
		vector131,
		vector132,
		vector133,
		vector134,
		vector135,
		vector136,
		vector137,
		vector138,
		vector139,
		vector140,
		vector141,
		vector142,
		vector143,
		vector144,
		vector145,
		vector146,
		vector147,
		vector148,
		vector149,
		vector150,
		vector151,
		vector152,
		vector153,
		vector154,
		vector155,
		vector156,
		vector157,
		vector158,
		vector159,
		vector160,
		vector161,
		vector162,
		vector163,
		vector164,
		vector165,
		vector166,
		vector167,
		vector168,
		vector169,
		vector170,
		vector171,
		vector172,
		vector173,
		vector174,
		vector175,
		vector176,
		vector177,
		vector178,
		vector179,
		vector180,
		vector181,
		vector182,
		vector183,
		vector184,
		vector185,
		vector186,
		vector187,
		vector188,
		vector189,
		vector190,
		vector191,
		vector192,
		vector193,
		vector194,
		vector195,
		vector196,
		vector197,
		vector198,
		vector199,
		vector200,
		vector201,
		vector202,
		vector203,
		vector204,
		vector205,
		vector206,
		vector207,
		vector208,
		vector209,
		vector210,
		vector211,
		vector212,
		vector213,
		vector214,
		vector215,
		vector216,
		vector217,
		vector218,
		vector219,
		vector220,
		vector221,
		vector222,
		vector223,
		vector224,
		vector225,
		vector226,
		vector227,
		vector228,
		vector229,
		vector230,
		vector231,
		vector232,
		vector233,
		vector234,
		vector235,
		vector236,
		vector237,
		vector238,
		vector239,
		vector240,
		vector241,
		vector242,
		vector243,
		vector244,
		vector245,
		vector246,
		vector247,
		vector248,
		vector249,
		vector250,
		vector251,
		vector252,
		vector253,
		vector254,
		vector255,
	}
	for i, f := range fns {
		Vectors[i] = funcPC(f)
	}
}
