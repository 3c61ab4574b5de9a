package command

import (
	"context"
)

type deleteCommand struct {
	Archive string `long:"archive" short:"a" required:"true" description:"name of the stored archive to remove"`
}

func (c *deleteCommand) Execute(args []string) (err error) {
	ingester, closeFn, err := openIngester()
	if err != nil {
		return
	}

	defer closeFn()

	err = ingester.Remove(context.TODO(), c.Archive)
	return
}
