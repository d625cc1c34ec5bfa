package tx

import (
	"context"
	"fmt"
)

// Sign fills the unlocking script of every input that carries an
// unlocker, in index order. Inputs that already have an unlocking script
// are left alone; an input with neither is an error.
func (t *Transaction) Sign(ctx context.Context) error {
	for i, in := range t.Inputs {
		if len(in.UnlockingScript) > 0 {
			continue
		}
		if in.Unlocker == nil {
			return fmt.Errorf("input %d has neither unlocking script nor unlocker", i)
		}
		unlocking, err := in.Unlocker.Sign(ctx, t, i)
		if err != nil {
			return fmt.Errorf("sign input %d: %w", i, err)
		}
		in.UnlockingScript = unlocking
	}
	return nil
}
