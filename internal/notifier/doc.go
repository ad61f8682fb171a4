// Package notifier announces canonical AI events on external channels.
//
// TwitterNotifier posts one tweet per event using OAuth1 credentials from the
// environment and waits between posts to stay under rate limits. TelegramNotifier
// sends a single HTML digest grouped by day, split into several messages when it
// exceeds the Bot API limit. DryRunNotifier and DryRunDigest print instead of posting.
package notifier
