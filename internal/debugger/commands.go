package debugger

import "github.com/vburojevic/tdb/internal/domain"

func (c *Controller) quit(string) error {
	c.source.RequestQuit()
	c.terminate(domain.EndQuit)
	return nil
}

func (c *Controller) step(string) error {
	c.source.RequestStep()
	return nil
}

func (c *Controller) next(string) error {
	c.source.RequestNext(c.frame)
	return nil
}

func (c *Controller) stepReturn(string) error {
	c.source.RequestReturn(c.frame)
	return nil
}

func (c *Controller) toggleVars(string) error {
	c.session.ToggleLocals()
	return nil
}

func (c *Controller) watch(name string) error {
	c.session.AddWatch(name)
	return nil
}

func (c *Controller) unwatch(name string) error {
	c.session.RemoveWatch(name)
	return nil
}

// jump reads a target line and discards it, execution does not move
func (c *Controller) jump(string) error {
	return nil
}
