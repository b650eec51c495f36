// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

type handler func(mc *Machine, in Instruction) error

var opcodes = [16]handler{
	OP_JP:       opJp,
	OP_CALL:     opCall,
	OP_SE_BYTE:  opSeByte,
	OP_SNE_BYTE: opSneByte,
	OP_SE_REG:   opSeReg,
	OP_LD_BYTE:  opLdByte,
	OP_ADD_BYTE: opAddByte,
	OP_SNE_REG:  opSneReg,
	OP_LD_I:     opLdI,
	OP_JP_V0:    opJpV0,
	OP_RND:      opRnd,
	OP_DRW:      opDrw,
}

var sysOps = map[uint16]handler{
	SYS_CLS: opCls,
	SYS_RET: opRet,
}

var aluOps = [16]handler{
	ALU_LD:   opLdVxVy,
	ALU_OR:   opOr,
	ALU_AND:  opAnd,
	ALU_XOR:  opXor,
	ALU_ADD:  opAdd,
	ALU_SUB:  opSub,
	ALU_SHR:  opShr,
	ALU_SUBN: opSubn,
	ALU_SHL:  opShl,
}

var keyOps = map[uint8]handler{
	KEY_SKP:  opSkp,
	KEY_SKNP: opSknp,
}

var miscOps = map[uint8]handler{
	MISC_LD_VX_DT: opLdVxDt,
	MISC_LD_VX_K:  opLdVxK,
	MISC_LD_DT_VX: opLdDtVx,
	MISC_LD_ST_VX: opLdStVx,
	MISC_ADD_I_VX: opAddIVx,
	MISC_LD_F_VX:  opLdFVx,
	MISC_LD_B_VX:  opLdBVx,
	MISC_LD_MEM:   opLdMemVx,
	MISC_LD_REG:   opLdVxMem,
}

// dispatch returns nil when no pattern matches the instruction.
func dispatch(in Instruction) handler {
	switch in.N0 {
	case OP_SYS:
		return sysOps[in.Addr]
	case OP_SE_REG, OP_SNE_REG:
		if in.N3 != 0x0 {
			return nil
		}
	case OP_ALU:
		return aluOps[in.N3]
	case OP_KEY:
		return keyOps[in.Byte]
	case OP_MISC:
		return miscOps[in.Byte]
	}

	return opcodes[in.N0]
}

// IsValid reports whether the instruction decodes to a known operation.
func IsValid(in Instruction) bool {
	return dispatch(in) != nil
}

func (mc *Machine) setFlag(set bool) {
	if set {
		mc.State.Registers[FLAG_REGISTER] = 1
	} else {
		mc.State.Registers[FLAG_REGISTER] = 0
	}
}

// setWithFlag stores value in Vx, then the flag, so VF keeps the flag when
// x is F.
func (mc *Machine) setWithFlag(x uint8, value uint8, flag bool) {
	mc.State.Registers[x] = value
	mc.setFlag(flag)
}

func (mc *Machine) skipIf(cond bool) {
	if cond {
		mc.State.Program += 2
	}
}

func (mc *Machine) add(x uint8, a, b uint8) {
	sum := uint16(a) + uint16(b)
	mc.setWithFlag(x, uint8(sum), sum > 0xFF)
}

// sub sets VF when no borrow occurs.
func (mc *Machine) sub(x uint8, a, b uint8) {
	mc.setWithFlag(x, a-b, a >= b)
}

func (mc *Machine) logic(x uint8, value uint8) {
	mc.State.Registers[x] = value

	if mc.Profile.LogicResetsFlag {
		mc.setFlag(false)
	}
}

// CLS  |0|0|E|0|
func opCls(mc *Machine, in Instruction) error {
	mc.State.ClearDisplay()
	return nil
}

// RET  |0|0|E|E|
func opRet(mc *Machine, in Instruction) error {
	addr, err := mc.pop()

	if err != nil {
		return err
	}

	mc.State.Program = addr
	return nil
}

// JP   |1|addr |
func opJp(mc *Machine, in Instruction) error {
	mc.State.Program = in.Addr
	return nil
}

// CALL |2|addr |
func opCall(mc *Machine, in Instruction) error {
	mc.push(mc.State.Program)
	mc.State.Program = in.Addr
	return nil
}

// SE   |3|x|byte|
func opSeByte(mc *Machine, in Instruction) error {
	mc.skipIf(mc.State.Registers[in.X()] == in.Byte)
	return nil
}

// SNE  |4|x|byte|
func opSneByte(mc *Machine, in Instruction) error {
	mc.skipIf(mc.State.Registers[in.X()] != in.Byte)
	return nil
}

// SE   |5|x|y|0|
func opSeReg(mc *Machine, in Instruction) error {
	mc.skipIf(mc.State.Registers[in.X()] == mc.State.Registers[in.Y()])
	return nil
}

// LD   |6|x|byte|
func opLdByte(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X()] = in.Byte
	return nil
}

// ADD  |7|x|byte| VF untouched
func opAddByte(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X()] += in.Byte
	return nil
}

// LD   |8|x|y|0|
func opLdVxVy(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X()] = mc.State.Registers[in.Y()]
	return nil
}

// OR   |8|x|y|1|
func opOr(mc *Machine, in Instruction) error {
	mc.logic(in.X(), mc.State.Registers[in.X()]|mc.State.Registers[in.Y()])
	return nil
}

// AND  |8|x|y|2|
func opAnd(mc *Machine, in Instruction) error {
	mc.logic(in.X(), mc.State.Registers[in.X()]&mc.State.Registers[in.Y()])
	return nil
}

// XOR  |8|x|y|3|
func opXor(mc *Machine, in Instruction) error {
	mc.logic(in.X(), mc.State.Registers[in.X()]^mc.State.Registers[in.Y()])
	return nil
}

// ADD  |8|x|y|4| VF = carry
func opAdd(mc *Machine, in Instruction) error {
	mc.add(in.X(), mc.State.Registers[in.X()], mc.State.Registers[in.Y()])
	return nil
}

// SUB  |8|x|y|5| VF = not borrow
func opSub(mc *Machine, in Instruction) error {
	mc.sub(in.X(), mc.State.Registers[in.X()], mc.State.Registers[in.Y()])
	return nil
}

// SHR  |8|x|y|6| Vx = Vy >> 1, VF = bit 0 of Vy
func opShr(mc *Machine, in Instruction) error {
	vy := mc.State.Registers[in.Y()]
	mc.setWithFlag(in.X(), vy>>1, vy&0x01 != 0)
	return nil
}

// SUBN |8|x|y|7| VF = not borrow
func opSubn(mc *Machine, in Instruction) error {
	mc.sub(in.X(), mc.State.Registers[in.Y()], mc.State.Registers[in.X()])
	return nil
}

// SHL  |8|x|y|E| Vx = Vy << 1, VF = bit 7 of Vy
func opShl(mc *Machine, in Instruction) error {
	vy := mc.State.Registers[in.Y()]
	mc.setWithFlag(in.X(), vy<<1, vy&0x80 != 0)
	return nil
}

// SNE  |9|x|y|0|
func opSneReg(mc *Machine, in Instruction) error {
	mc.skipIf(mc.State.Registers[in.X()] != mc.State.Registers[in.Y()])
	return nil
}

// LD   |A|addr | I = addr
func opLdI(mc *Machine, in Instruction) error {
	mc.State.Index = in.Addr
	return nil
}

// JP   |B|addr | pc = addr + V0
func opJpV0(mc *Machine, in Instruction) error {
	mc.State.Program = in.Addr + uint16(mc.State.Registers[0x0])
	return nil
}

// RND  |C|x|byte|
func opRnd(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X()] = uint8(mc.random.Intn(0x100)) & in.Byte
	return nil
}

// DRW  |D|x|y|n|
//
// Draws n rows starting at I. The origin wraps, the sprite itself is
// clipped at the right and bottom edges. VF is set when any lit sprite pixel
// lands on a lit display pixel.
func opDrw(mc *Machine, in Instruction) error {
	col := mc.State.Registers[in.X()] % DISPLAY_WIDTH
	row := int(mc.State.Registers[in.Y()] % DISPLAY_HEIGHT)

	rows := int(in.N())
	if row+rows > DISPLAY_HEIGHT {
		rows = DISPLAY_HEIGHT - row
	}

	if err := mc.checkRange(mc.State.Index, rows, "sprite read"); err != nil {
		return err
	}

	collided := false

	for i := 0; i < rows; i++ {
		sprite := mc.read(mc.State.Index + uint16(i))

		if mc.State.blit(row+i, col, sprite) {
			collided = true
		}
	}

	mc.setFlag(collided)
	return nil
}

// SKP  |E|x|9|E|
func opSkp(mc *Machine, in Instruction) error {
	mc.skipIf(mc.keys[mc.State.Registers[in.X()]&0xF])
	return nil
}

// SKNP |E|x|A|1|
func opSknp(mc *Machine, in Instruction) error {
	mc.skipIf(!mc.keys[mc.State.Registers[in.X()]&0xF])
	return nil
}

// LD   |F|x|0|7| Vx = DT
func opLdVxDt(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X()] = mc.State.Delay
	return nil
}

// LD   |F|x|0|A| Vx = K
//
// Waits for a key to be released: a key held on the previous tick and up on
// this one. Until then the instruction is re-fetched.
func opLdVxK(mc *Machine, in Instruction) error {
	for key := uint8(0); key < KEY_COUNT; key++ {
		if mc.lastKeys[key] && !mc.keys[key] {
			mc.State.Registers[in.X()] = key
			return nil
		}
	}

	mc.State.Program -= 2
	mc.waiting = true
	return nil
}

// LD   |F|x|1|5| DT = Vx
func opLdDtVx(mc *Machine, in Instruction) error {
	mc.State.Delay = mc.State.Registers[in.X()]
	return nil
}

// LD   |F|x|1|8| ST = Vx
func opLdStVx(mc *Machine, in Instruction) error {
	mc.State.Sound = mc.State.Registers[in.X()]
	return nil
}

// ADD  |F|x|1|E| I += Vx, VF = carry into bit 12
func opAddIVx(mc *Machine, in Instruction) error {
	mc.State.Index += uint16(mc.State.Registers[in.X()])
	mc.setFlag(mc.State.Index > 0xFFF)
	return nil
}

// LD   |F|x|2|9| I = glyph address of digit Vx
func opLdFVx(mc *Machine, in Instruction) error {
	mc.State.Index = FontAddr(mc.State.Registers[in.X()])
	return nil
}

// LD   |F|x|3|3| [I..I+2] = BCD of Vx
func opLdBVx(mc *Machine, in Instruction) error {
	if err := mc.checkRange(mc.State.Index, 3, "bcd store"); err != nil {
		return err
	}

	value := mc.State.Registers[in.X()]

	mc.write(mc.State.Index+0, value/100)
	mc.write(mc.State.Index+1, (value%100)/10)
	mc.write(mc.State.Index+2, value%10)
	return nil
}

// LD   |F|x|5|5| [I..I+x] = V0..Vx
func opLdMemVx(mc *Machine, in Instruction) error {
	count := int(in.X()) + 1

	if err := mc.checkRange(mc.State.Index, count, "register store"); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		mc.write(mc.State.Index+uint16(i), mc.State.Registers[i])
	}

	return nil
}

// LD   |F|x|6|5| V0..Vx = [I..I+x]
func opLdVxMem(mc *Machine, in Instruction) error {
	count := int(in.X()) + 1

	if err := mc.checkRange(mc.State.Index, count, "register load"); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		mc.State.Registers[i] = mc.read(mc.State.Index + uint16(i))
	}

	return nil
}
