// Package template renders the Drupal settings files of a site from embedded
// Jinja templates.
//
// Each generation is a complete set of three templates, rendered in the
// order Drupal includes them:
//
//	osr/settings.local_pre.php.j2
//	osr/settings.php.j2
//	osr/settings.local_post.php.j2
//	wwwng/ (same structure)
//
// settings.php includes settings.local_pre.php before its own body and
// settings.local_post.php after it, so the pre file sets $conf values the
// main file reads and the post file overrides them.
//
// # Rendering Templates
//
//	ctx, err := sitectx.Build(site, cfg)
//	if err != nil {
//	    return err
//	}
//	files, err := template.RenderAll(template.GenerationOSR, ctx.Vars())
//
// # Template Data
//
// Templates receive the mapping returned by sitectx.Context.Vars. Optional
// values are absent when unset, so templates test them with "is defined" or
// a truthiness check before output. Referencing a variable that is not in
// the mapping fails the render with a missing variable error.
//
// # Adding New Templates
//
// To add a new generation:
//  1. Create a directory holding the three .j2 files
//  2. Add an embed directive and a case in getTemplateFS
//  3. Add the generation to Generations()
package template
