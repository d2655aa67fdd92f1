package renderer

import (
	"errors"
	"fmt"
	"sync"
)

type CommandKind int

const (
	CommandBlit CommandKind = iota
	CommandSetGlobalTexture
)

func (k CommandKind) String() string {
	switch k {
	case CommandBlit:
		return "blit"
	case CommandSetGlobalTexture:
		return "set-global-texture"
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is one recorded operation
type Command struct {
	Kind    CommandKind
	Blit    Blit
	Name    string
	Texture TargetID
}

// CommandBuffer records post pass work so it can be replayed on a device in strict
// program order.
type CommandBuffer struct {
	Name     string
	commands []Command
}

// Blit records a material pass. Pass is ignored for a nil material.
func (cb *CommandBuffer) Blit(source, dest TargetID, material *Material, pass int) {
	cb.BlitWith(Blit{Source: source, Dest: dest, Material: material, Pass: pass})
}

// BlitWith records a fully specified blit
func (cb *CommandBuffer) BlitWith(b Blit) {
	cb.commands = append(cb.commands, Command{Kind: CommandBlit, Blit: b})
}

// Copy records a plain copy from source to dest
func (cb *CommandBuffer) Copy(source, dest TargetID) {
	cb.Blit(source, dest, nil, 0)
}

// SetGlobalTexture records a global texture binding visible to later commands
func (cb *CommandBuffer) SetGlobalTexture(name string, id TargetID) {
	cb.commands = append(cb.commands, Command{Kind: CommandSetGlobalTexture, Name: name, Texture: id})
}

func (cb *CommandBuffer) Len() int {
	return len(cb.commands)
}

// Commands returns a copy of the recorded commands
func (cb *CommandBuffer) Commands() []Command {
	out := make([]Command, len(cb.commands))
	copy(out, cb.commands)
	return out
}

// Clear drops all recorded commands
func (cb *CommandBuffer) Clear() {
	cb.commands = cb.commands[:0]
}

// ExecuteCommandBuffer replays cb on device. It stops at the first failing command and
// reports it as ErrSubmission.
func ExecuteCommandBuffer(device Device, cb *CommandBuffer) error {
	globals := device.Globals()
	for i, cmd := range cb.commands {
		var err error
		switch cmd.Kind {
		case CommandBlit:
			err = device.Blit(cmd.Blit)
		case CommandSetGlobalTexture:
			globals.SetTexture(cmd.Name, cmd.Texture)
		default:
			err = fmt.Errorf("unknown command kind %d", int(cmd.Kind))
		}
		if err != nil {
			if !errors.Is(err, ErrSubmission) {
				err = fmt.Errorf("%w: %w", ErrSubmission, err)
			}
			return fmt.Errorf("%s: command %d (%s): %w", cb.Name, i, cmd.Kind, err)
		}
	}
	return nil
}

var commandBufferPool = sync.Pool{
	New: func() interface{} { return &CommandBuffer{} },
}

// GetCommandBuffer takes a cleared command buffer from the shared pool
func GetCommandBuffer(name string) *CommandBuffer {
	cb := commandBufferPool.Get().(*CommandBuffer)
	cb.Name = name
	cb.Clear()
	return cb
}

// ReleaseCommandBuffer returns cb to the shared pool. cb must not be used afterwards.
func ReleaseCommandBuffer(cb *CommandBuffer) {
	if cb == nil {
		return
	}
	cb.Clear()
	cb.Name = ""
	commandBufferPool.Put(cb)
}
