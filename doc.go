// Package unicord is a client library for the platform's bot surface:
// a persistent gateway connection, REST transport, coalescing entity
// caches, and a handler processor for events, chat commands,
// application commands, and message components.
//
// A minimal bot:
//
//	client, err := unicord.New(unicord.Config{
//		Token:         os.Getenv("BOT_TOKEN"),
//		ApplicationID: os.Getenv("APPLICATION_ID"),
//		Prefix:        "!",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	client.Command("ping", unicord.Func(func(ctx context.Context, dctx *unicord.Context, args *unicord.Args) error {
//		_, err := dctx.ReplyText(ctx, "pong")
//		return err
//	}))
//	if err := client.Connect(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// The gateway handshake, heartbeating, and reconnection run in the
// background after Connect returns. Handlers run off the frame loop on
// a per-connection dispatch worker, in event arrival order.
package unicord
