// Package publish writes rendered settings files into a site's Drupal
// sites/default directory.
//
// A Publisher replaces the three settings files of a site as a unit. The
// local implementation writes each file to a hidden temp file in the
// destination directory, optionally checks it with "php -l", and only then
// renames the temps over the live files in include order:
//
//	settings.local_pre.php -> settings.php -> settings.local_post.php
//
// If anything fails before the renames, the temps are removed and the live
// files are untouched.
//
// # Layout
//
//	<root>/<sid>/<sid>/sites/default/settings.php
//
// # Usage
//
//	pub := publish.NewLocal("/data/code")
//	paths, err := pub.Publish(ctx, "p1abc", []publish.File{
//	    {Name: "settings.php", Content: []byte(out)},
//	})
//
// With linting, the executor runs the configured php binary:
//
//	pub := publish.NewLocalWithLint(root, "php", executor.NewSystemExecutor())
//
// # Testing
//
// MockPublisher records calls and lets tests override every method:
//
//	mock := publish.NewMockPublisher("/data/code")
//	mock.PublishFunc = func(sid string, files []publish.File) ([]string, error) {
//	    return nil, errors.WriteFailure("/data/code", os.ErrPermission)
//	}
package publish
