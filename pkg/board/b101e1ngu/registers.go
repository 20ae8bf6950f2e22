package b101e1ngu

// Bus domains
const (
	HostBus = 0x2
	ProcBus = 0x3
)

// Processor registers, in ProcBus.
const (
	ProcessorBase = 0x2000000

	SYSCON = ProcessorBase + 0x00180480
	SDRCON = ProcessorBase + 0x00180484 // SDRAM config
	VIRPT  = ProcessorBase + 0x00180730
)

// SYSCON and SDRCON values.
const (
	ResetSYSCON   = 0x000279E7
	DefaultSYSCON = 0x0019E623
	DefaultSDRCON = 0x00002513
)

// Host PLD registers, in HostBus.
const (
	HMODE   = 0x00000000
	HSTATUS = 0x00000004
	HMASK   = 0x0000000C
	SEM0    = 0x0000001C
	MSGADR  = 0x00000080

	MsgWords = 64
)

// HMODE flags
const (
	HModeDMA0En    = 0x01000000 // DMA0 request (FIFO2 read)
	HModeDMA1En    = 0x02000000 // DMA1 request (FIFO1 write)
	HModeResFIFO2  = 0x04000000
	HModeResFIFO1  = 0x08000000
	HModeReset     = 0x10000000
	HModeFlash     = 0x20000000 // boot from flash
	HModeErrClear  = 0x80000000
	hmodeResetMask = HModeErrClear | HModeReset | HModeResFIFO1 | HModeResFIFO2
)

// HMASK flags, interrupt enables.
const (
	HMaskMsg8   = 0x00000001
	HMaskMsg9   = 0x00000002
	HMaskMsg10  = 0x00000004
	HMaskMsg11  = 0x00000008
	HMaskMsg12  = 0x00000010
	HMaskMsg13  = 0x00000020
	HMaskMsg14  = 0x00000040
	HMaskMsg15  = 0x00000080
	HMask2EF    = 0x00000100 // FIFO2 (DSP to host) empty
	HMask2HF    = 0x00000200 // FIFO2 half full
	HMask2FF    = 0x00000400 // FIFO2 full
	HMask1EF    = 0x00000800 // FIFO1 (host to DSP) empty
	HMask1HF    = 0x00001000 // FIFO1 half full
	HMask1FF    = 0x00002000 // FIFO1 full
	HMask2Error = 0x00004000
	HMask1Error = 0x00008000
	HMaskSem0   = 0x00010000
	HMaskSem1   = 0x00020000
	HMaskSem2   = 0x00040000
	HMaskSem3   = 0x00080000
	HMaskSem4   = 0x00100000
	HMaskSem5   = 0x00200000
	HMaskSem6   = 0x00400000
	HMaskSem7   = 0x00800000
	HMask2PEF   = 0x01000000
	HMask2PFF   = 0x02000000
	HMask1PEF   = 0x04000000
	HMask1PFF   = 0x08000000
	HMaskCntErr = 0x80000000
)
