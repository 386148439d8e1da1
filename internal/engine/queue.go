package engine

// commandQueue is the FIFO of commands waiting to be reduced.
//
// Commands dispatched from inside a listener are queued here and run
// after the current command has finished notifying, so every command
// runs to completion before the next begins.
//
// Not safe for concurrent use; the Engine is single-threaded.
type commandQueue struct {
	commands []Command
}

func newCommandQueue() *commandQueue {
	return &commandQueue{commands: make([]Command, 0, 8)}
}

// Enqueue adds a command to the back of the queue.
func (q *commandQueue) Enqueue(c Command) {
	q.commands = append(q.commands, c)
}

// TryDequeue removes and returns the front command.
// Returns (nil, false) if the queue is empty.
func (q *commandQueue) TryDequeue() (Command, bool) {
	if len(q.commands) == 0 {
		return nil, false
	}
	c := q.commands[0]

	// Nil out the slot so the backing array does not retain restored
	// partial snapshots.
	q.commands[0] = nil
	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}
	return c, true
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	return len(q.commands)
}
