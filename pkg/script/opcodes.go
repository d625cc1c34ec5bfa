package script

// Script opcodes used by the templates. Values follow the standard
// Bitcoin opcode table.
const (
	Op0              byte = 0x00
	OpFALSE          byte = 0x00
	OpPUSHDATA1      byte = 0x4c
	OpPUSHDATA2      byte = 0x4d
	OpPUSHDATA4      byte = 0x4e
	Op1NEGATE        byte = 0x4f
	Op1              byte = 0x51
	OpTRUE           byte = 0x51
	Op2              byte = 0x52
	Op16             byte = 0x60
	OpNOP            byte = 0x61
	OpIF             byte = 0x63
	OpNOTIF          byte = 0x64
	OpELSE           byte = 0x67
	OpENDIF          byte = 0x68
	OpVERIFY         byte = 0x69
	OpRETURN         byte = 0x6a
	OpDUP            byte = 0x76
	OpEQUAL          byte = 0x87
	OpEQUALVERIFY    byte = 0x88
	OpRIPEMD160      byte = 0xa6
	OpSHA256         byte = 0xa8
	OpHASH160        byte = 0xa9
	OpHASH256        byte = 0xaa
	OpCHECKSIG       byte = 0xac
	OpCHECKSIGVERIFY byte = 0xad
	OpCHECKMULTISIG  byte = 0xae
)

// opcodeNames maps opcodes to their ASM names. Only the opcodes this
// library emits are named; anything else renders as OP_UNKNOWN_xx.
var opcodeNames = map[byte]string{
	Op0:              "OP_0",
	OpPUSHDATA1:      "OP_PUSHDATA1",
	OpPUSHDATA2:      "OP_PUSHDATA2",
	OpPUSHDATA4:      "OP_PUSHDATA4",
	Op1NEGATE:        "OP_1NEGATE",
	Op1:              "OP_1",
	Op2:              "OP_2",
	OpNOP:            "OP_NOP",
	OpIF:             "OP_IF",
	OpNOTIF:          "OP_NOTIF",
	OpELSE:           "OP_ELSE",
	OpENDIF:          "OP_ENDIF",
	OpVERIFY:         "OP_VERIFY",
	OpRETURN:         "OP_RETURN",
	OpDUP:            "OP_DUP",
	OpEQUAL:          "OP_EQUAL",
	OpEQUALVERIFY:    "OP_EQUALVERIFY",
	OpSHA256:         "OP_SHA256",
	OpHASH160:        "OP_HASH160",
	OpHASH256:        "OP_HASH256",
	OpCHECKSIG:       "OP_CHECKSIG",
	OpCHECKSIGVERIFY: "OP_CHECKSIGVERIFY",
	OpCHECKMULTISIG:  "OP_CHECKMULTISIG",
}
